package command

import (
	"context"
	"slashbot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(_ context.Context, _ domain.Arguments) error {
	return nil
}

func descriptor(name string) domain.Descriptor {
	return domain.Descriptor{
		Name:        name,
		Description: "test command",
		Handlers:    []domain.HandlerSpec{domain.Root(noop)},
	}
}

func TestRegister(t *testing.T) {
	cr := &Registry{}

	err := cr.Register(descriptor("test"))
	require.NoError(t, err)
	assert.Len(t, cr.commands, 1)
}

func TestRegisterRejectsInvalidDescriptor(t *testing.T) {
	cr := &Registry{}

	err := cr.Register(domain.Descriptor{Name: "broken"})
	require.ErrorIs(t, err, domain.ErrInvalidDescriptor)
	assert.Empty(t, cr.commands)
}

func TestRegisterDuplicate(t *testing.T) {
	type TestCase struct {
		description string
		first       string
		second      string
	}

	testCases := []TestCase{
		{
			description: "same name",
			first:       "ban",
			second:      "ban",
		},
		{
			description: "name differs only in case",
			first:       "ban",
			second:      "BAN",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			cr := &Registry{}

			require.NoError(t, cr.Register(descriptor(testCase.first)))

			err := cr.Register(descriptor(testCase.second))
			require.ErrorIs(t, err, domain.ErrDuplicateCommand)
			assert.Len(t, cr.commands, 1)

			found, ok := cr.Find(testCase.second)
			require.True(t, ok)
			assert.Equal(t, testCase.first, found.Name)
		})
	}
}

func TestRegisterAllStopsAtFirstFailure(t *testing.T) {
	cr := &Registry{}

	err := cr.RegisterAll(descriptor("foo"), descriptor("foo"), descriptor("bar"))
	require.ErrorIs(t, err, domain.ErrDuplicateCommand)

	_, ok := cr.Find("bar")
	assert.False(t, ok)
	assert.Len(t, cr.List(), 1)
}

func TestFindNotRegistered(t *testing.T) {
	cr := &Registry{}

	_, ok := cr.Find("test")
	assert.False(t, ok)
}

func TestFindCaseInsensitive(t *testing.T) {
	cr := &Registry{}
	require.NoError(t, cr.RegisterAll(descriptor("foo"), descriptor("Bar")))

	for _, name := range []string{"foo", "FOO", "Foo"} {
		d, ok := cr.Find(name)
		require.True(t, ok, name)
		assert.Equal(t, "foo", d.Name)
	}

	d, ok := cr.Find("bar")
	require.True(t, ok)
	assert.Equal(t, "Bar", d.Name)
}

func TestRegisterCopiesHandlers(t *testing.T) {
	cr := &Registry{}
	d := descriptor("foo")

	require.NoError(t, cr.Register(d))
	d.Handlers[0].SubName = "mutated"

	found, ok := cr.Find("foo")
	require.True(t, ok)
	assert.True(t, found.Handlers[0].IsRoot())
}

func TestList(t *testing.T) {
	cr := &Registry{}
	require.NoError(t, cr.RegisterAll(descriptor("foo"), descriptor("bar")))

	list := cr.List()

	require.Len(t, list, 2)
	assert.Equal(t, "foo", list[0].Name)
	assert.Equal(t, "bar", list[1].Name)
}
