package app

import (
	tele "gopkg.in/telebot.v4"
)

type sentMessage struct {
	what any
	opts []any
}

// fakeContext implements the parts of tele.Context the handlers touch.
type fakeContext struct {
	tele.Context

	update    tele.Update
	store     map[string]any
	sent      []sentMessage
	edits     []any
	responses []*tele.CallbackResponse
	deleted   int
	editErr   error
	sendErr   error
	// calls records "send" and "delete" in the order they happened
	calls []string
}

func newMessageContext(text string) *fakeContext {
	user := &tele.User{ID: 42, FirstName: "Ann"}
	return &fakeContext{
		update: tele.Update{ID: 1, Message: &tele.Message{
			ID:     10,
			Text:   text,
			Sender: user,
			Chat:   &tele.Chat{ID: 42, Type: tele.ChatPrivate},
		}},
		store: map[string]any{},
	}
}

func newCallbackContext(data string) *fakeContext {
	user := &tele.User{ID: 42, FirstName: "Ann"}
	return &fakeContext{
		update: tele.Update{ID: 2, Callback: &tele.Callback{
			ID:     "cb-1",
			Data:   data,
			Sender: user,
			Message: &tele.Message{
				ID:   11,
				Chat: &tele.Chat{ID: 42, Type: tele.ChatPrivate},
			},
		}},
		store: map[string]any{},
	}
}

func (f *fakeContext) Update() tele.Update { return f.update }

func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }

func (f *fakeContext) Sender() *tele.User {
	switch {
	case f.update.Callback != nil:
		return f.update.Callback.Sender
	case f.update.Message != nil:
		return f.update.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	switch {
	case f.update.Callback != nil && f.update.Callback.Message != nil:
		return f.update.Callback.Message.Chat
	case f.update.Message != nil:
		return f.update.Message.Chat
	}
	return nil
}

func (f *fakeContext) Text() string {
	if f.update.Message == nil {
		return ""
	}
	return f.update.Message.Text
}

func (f *fakeContext) Get(key string) any { return f.store[key] }

func (f *fakeContext) Set(key string, val any) { f.store[key] = val }

func (f *fakeContext) Send(what any, opts ...any) error {
	f.calls = append(f.calls, "send")
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{what: what, opts: opts})
	return nil
}

func (f *fakeContext) Edit(what any, _ ...any) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, what)
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	var r *tele.CallbackResponse
	if len(resp) > 0 {
		r = resp[0]
	}
	f.responses = append(f.responses, r)
	return nil
}

func (f *fakeContext) Delete() error {
	f.calls = append(f.calls, "delete")
	f.deleted++
	return nil
}
