package command

import (
	"context"
	"errors"
	"slashbot/internal/core/domain"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	args := m.Called(ctx, guildID, userID, reason, deleteDays)
	return args.Error(0)
}

func (m *MockModerator) Unban(ctx context.Context, guildID, userID string) error {
	args := m.Called(ctx, guildID, userID)
	return args.Error(0)
}

func replyWith(content string, ephemeral bool) interface{} {
	return mock.MatchedBy(func(resp *discordgo.InteractionResponse) bool {
		flagged := resp.Data.Flags == discordgo.MessageFlagsEphemeral
		return resp.Data.Content == content && flagged == ephemeral
	})
}

func TestModeration_Describe(t *testing.T) {
	d := NewModeration(nil, "mod").Describe()

	require.NoError(t, d.Validate())
	assert.Equal(t, domain.ScopeDefault, d.Scope)
	require.NotNil(t, d.Permissions.MemberPermissions())
	assert.Equal(t, int64(discordgo.PermissionBanMembers), *d.Permissions.MemberPermissions())

	_, hasRoot := d.Root()
	assert.False(t, hasRoot)

	ban, ok := d.SubCommand("ban")
	require.True(t, ok)
	require.Len(t, ban.Options(), 3)
	assert.True(t, ban.Options()[1].AutoComplete)
	assert.NotNil(t, ban.Options()[1].Autocomplete)

	_, ok = d.SubCommand("unban")
	assert.True(t, ok)
}

func TestModeration_Ban(t *testing.T) {
	tests := []struct {
		name      string
		guildID   string
		values    domain.OptionValues
		mockSetup func(mm *MockModerator, mr *MockResponder)
		wantErr   bool
	}{
		{
			name:    "bans with reason and deleted days",
			guildID: "g1",
			values: domain.OptionValues{
				"user":        &discordgo.User{ID: "u2"},
				"reason":      "Spam",
				"delete_days": int64(2),
			},
			mockSetup: func(mm *MockModerator, mr *MockResponder) {
				mm.On("Ban", mock.Anything, "g1", "u2", "Spam", 2).Return(nil).Once()
				mr.On("Respond", mock.Anything, mock.Anything, replyWith("Banned <@u2>: Spam", false)).Return(nil).Once()
			},
		},
		{
			name:    "bans without reason",
			guildID: "g1",
			values:  domain.OptionValues{"user": &discordgo.User{ID: "u2"}},
			mockSetup: func(mm *MockModerator, mr *MockResponder) {
				mm.On("Ban", mock.Anything, "g1", "u2", "", 0).Return(nil).Once()
				mr.On("Respond", mock.Anything, mock.Anything, replyWith("Banned <@u2>.", false)).Return(nil).Once()
			},
		},
		{
			name:    "refuses to ban the caller",
			guildID: "g1",
			values:  domain.OptionValues{"user": &discordgo.User{ID: "mod1"}},
			mockSetup: func(_ *MockModerator, mr *MockResponder) {
				mr.On("Respond", mock.Anything, mock.Anything, replyWith("You cannot ban yourself.", true)).Return(nil).Once()
			},
		},
		{
			name:   "refuses outside a server",
			values: domain.OptionValues{"user": &discordgo.User{ID: "u2"}},
			mockSetup: func(_ *MockModerator, mr *MockResponder) {
				mr.On("Respond", mock.Anything, mock.Anything, replyWith("Bans only work inside a server.", true)).Return(nil).Once()
			},
		},
		{
			name:    "platform failure is returned",
			guildID: "g1",
			values:  domain.OptionValues{"user": &discordgo.User{ID: "u2"}},
			mockSetup: func(mm *MockModerator, _ *MockResponder) {
				mm.On("Ban", mock.Anything, "g1", "u2", "", 0).Return(errors.New("missing permissions")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moderator := new(MockModerator)
			responder := new(MockResponder)
			tt.mockSetup(moderator, responder)

			event := interaction("mod")
			event.GuildID = tt.guildID
			ic := domain.NewInteractionContext(nil, event, responder, "ban", tt.values)

			ban, ok := NewModeration(moderator, "mod").Describe().SubCommand("ban")
			require.True(t, ok)

			err := ban.Run(t.Context(), ban.Bind(ic, ic.Options()))

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			moderator.AssertExpectations(t)
			responder.AssertExpectations(t)
		})
	}
}

func TestModeration_Unban(t *testing.T) {
	moderator := new(MockModerator)
	responder := new(MockResponder)

	moderator.On("Unban", mock.Anything, "g1", "u2").Return(nil).Once()
	responder.On("Respond", mock.Anything, mock.Anything, replyWith("Unbanned <@u2>.", false)).Return(nil).Once()

	ic := domain.NewInteractionContext(nil, interaction("mod"), responder, "unban",
		domain.OptionValues{"user": &discordgo.User{ID: "u2"}})

	unban, ok := NewModeration(moderator, "mod").Describe().SubCommand("unban")
	require.True(t, ok)

	require.NoError(t, unban.Run(t.Context(), unban.Bind(ic, ic.Options())))
	moderator.AssertExpectations(t)
	responder.AssertExpectations(t)
}

func TestSuggestReasons(t *testing.T) {
	tests := []struct {
		name  string
		typed string
		want  []string
	}{
		{
			name:  "empty input lists every reason",
			typed: "",
			want:  banReasons,
		},
		{
			name:  "typed text comes first",
			typed: "spa",
			want:  []string{"spa", "Spam"},
		},
		{
			name:  "exact match is not repeated",
			typed: "raiding",
			want:  []string{"raiding"},
		},
		{
			name:  "substring match ignores case",
			typed: "LINK",
			want:  []string{"LINK", "Scam or phishing links"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choices, err := suggestReasons(context.Background(), nil, tt.typed)
			require.NoError(t, err)

			var got []string
			for _, c := range choices {
				got = append(got, c.Name)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}
