package command

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"slashbot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

const kb = 1024

const debugTemplate = "```" + `
allocated mem: %d KB
goroutines running: %d
heap: %d KB
stack: %d KB
shard: %d/%d
compiled with %s for %s
` + "```"

type Debug struct {
	command string
	target  string
}

func NewDebug(command string) *Debug {
	return &Debug{command: command, target: buildTarget()}
}

func (d *Debug) Describe() domain.Descriptor {
	return domain.Descriptor{
		Name:        d.command,
		Description: "Show runtime statistics of the bot",
		Permissions: domain.AdminsOnly,
		Handlers: []domain.HandlerSpec{
			domain.Root(d.run, domain.Context()),
		},
	}
}

func (d *Debug) run(ctx context.Context, args domain.Arguments) error {
	ic := args.Context(0)
	mem := readMemory()

	log.Debug().
		Str("interactionId", ic.Interaction().ID).
		Str("guild", ic.GuildID()).
		Uint64("totalKB", mem.total/kb).
		Uint64("heapKB", mem.heap/kb).
		Uint64("stackKB", mem.stack/kb).
		Msg("reporting runtime stats")

	return ic.ReplyEphemeral(ctx, fmt.Sprintf(debugTemplate,
		mem.total/kb,
		runtime.NumGoroutine(),
		mem.heap/kb,
		mem.stack/kb,
		ic.ShardID(), ic.ShardCount(),
		runtime.Version(), d.target,
	))
}

type memoryStats struct {
	heap, stack, total uint64
}

func readMemory() memoryStats {
	samples := []metrics.Sample{
		{Name: "/memory/classes/heap/objects:bytes"},
		{Name: "/memory/classes/heap/stacks:bytes"},
		{Name: "/memory/classes/total:bytes"},
	}
	metrics.Read(samples)

	value := func(s metrics.Sample) uint64 {
		if s.Value.Kind() != metrics.KindUint64 {
			return 0
		}
		return s.Value.Uint64()
	}

	return memoryStats{heap: value(samples[0]), stack: value(samples[1]), total: value(samples[2])}
}

// buildTarget reports the GOOS-GOARCH the binary was built for, falling back to the runtime values.
func buildTarget() string {
	goos, goarch := runtime.GOOS, runtime.GOARCH

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "GOOS":
				goos = setting.Value
			case "GOARCH":
				goarch = setting.Value
			}
		}
	}

	return goos + "-" + goarch
}
