package domain

import "github.com/bwmarrin/discordgo"

// Arguments are the values bound to a handler's declared parameters. Slots for options
// that were not supplied hold nil, and the accessors return zero values for them.
type Arguments []any

func (a Arguments) Get(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}

	return a[i]
}

// Present reports whether slot i received a value.
func (a Arguments) Present(i int) bool {
	return a.Get(i) != nil
}

func (a Arguments) String(i int) string {
	v, _ := a.Get(i).(string)
	return v
}

func (a Arguments) Int(i int) int64 {
	v, _ := a.Get(i).(int64)
	return v
}

func (a Arguments) Bool(i int) bool {
	v, _ := a.Get(i).(bool)
	return v
}

func (a Arguments) Float(i int) float64 {
	v, _ := a.Get(i).(float64)
	return v
}

func (a Arguments) User(i int) *discordgo.User {
	v, _ := a.Get(i).(*discordgo.User)
	return v
}

func (a Arguments) Channel(i int) *discordgo.Channel {
	v, _ := a.Get(i).(*discordgo.Channel)
	return v
}

func (a Arguments) Role(i int) *discordgo.Role {
	v, _ := a.Get(i).(*discordgo.Role)
	return v
}

func (a Arguments) Mentionable(i int) Mentionable {
	v, _ := a.Get(i).(Mentionable)
	return v
}

func (a Arguments) Attachment(i int) *discordgo.MessageAttachment {
	v, _ := a.Get(i).(*discordgo.MessageAttachment)
	return v
}

func (a Arguments) Context(i int) *InteractionContext {
	v, _ := a.Get(i).(*InteractionContext)
	return v
}
