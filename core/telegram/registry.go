package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/counterbot/core/logger"
	"github.com/m3rciful/counterbot/core/telegram/callbacks"
	"github.com/m3rciful/counterbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrInvalidCallback is returned for registrations missing a key, pattern or handler.
	ErrInvalidCallback = errors.New("invalid callback registration")
	// ErrDuplicateCallback is returned when a key or pattern name is already taken.
	ErrDuplicateCallback = errors.New("callback already registered")
)

// PatternCallback routes raw callback data by regular expression.
type PatternCallback struct {
	Name    string
	Pattern *regexp.Regexp
	Handler tele.HandlerFunc
}

// Registry holds the bot's commands, keyed callbacks, callback patterns and fallbacks.
// Registration happens during wiring; lookups are safe from handler goroutines.
type Registry struct {
	mu               sync.RWMutex
	commands         map[string]commands.Command
	callbacks        map[string]tele.HandlerFunc
	patterns         []PatternCallback
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry returns an empty registry whose unknown-callback fallback shows "Unsupported action".
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			_ = callbacks.AnswerText(c, "Unsupported action")
			return nil
		},
	}
}

func wireWarn(event string, attrs ...slog.Attr) {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, event, attrs...)
}

// RegisterCommand adds a slash command. Invalid or duplicate registrations are logged and dropped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "invalid"))
		return
	case !strings.HasPrefix(name, "/"):
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "no_slash_prefix"))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[name]; dup {
		wireWarn("register.command.duplicate", slog.String("name", name))
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns commands sorted by name; visibleOnly keeps only menu-listed ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]tele.Command, 0, len(r.commands))
	for name, cmd := range r.commands {
		if !visibleOnly || cmd.Listed() {
			list = append(list, tele.Command{Text: name, Description: cmd.Description})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves name or one of its aliases to the registered key.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = "/" + strings.TrimPrefix(name, "/")
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		if slices.ContainsFunc(cmd.Aliases, func(a string) bool { return "/"+strings.TrimPrefix(a, "/") == name }) {
			return key, cmd, true
		}
	}
	return "", commands.Command{}, false
}

// Commands returns a copy of the registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// RegisterCallback maps a telebot unique key to handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		wireWarn("register.callback.skip", slog.String("key", key), slog.Bool("handler_nil", handler == nil))
		return ErrInvalidCallback
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		wireWarn("register.callback.duplicate", slog.String("key", key))
		return fmt.Errorf("%w: %s", ErrDuplicateCallback, key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler registered under key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// RegisterCallbackPattern adds a handler for unkeyed callbacks whose raw data matches pattern.
// Patterns are tried in registration order.
func (r *Registry) RegisterCallbackPattern(name string, pattern *regexp.Regexp, handler tele.HandlerFunc) error {
	if name == "" || pattern == nil || handler == nil {
		wireWarn("register.callback.skip",
			slog.String("key", name),
			slog.Bool("handler_nil", handler == nil),
			slog.Bool("pattern_nil", pattern == nil),
		)
		return ErrInvalidCallback
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.ContainsFunc(r.patterns, func(p PatternCallback) bool { return p.Name == name }) {
		wireWarn("register.callback.duplicate", slog.String("key", name))
		return fmt.Errorf("%w: pattern %s", ErrDuplicateCallback, name)
	}
	r.patterns = append(r.patterns, PatternCallback{Name: name, Pattern: pattern, Handler: handler})
	return nil
}

// MatchCallback returns the first pattern whose expression matches data.
func (r *Registry) MatchCallback(data string) (PatternCallback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patterns {
		if p.Pattern.MatchString(data) {
			return p, true
		}
	}
	return PatternCallback{}, false
}

// ListCallbacks returns keys and pattern names, sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.callbacks)+len(r.patterns))
	for k := range r.callbacks {
		names = append(names, k)
	}
	for _, p := range r.patterns {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the unknown-callback fallback; nil is ignored.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.callbackNotFound = h
	r.mu.Unlock()
}

func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbackNotFound
}

// SetTextFallback sets the handler for plain text that matched no command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.mu.Lock()
	r.textFallback = h
	r.mu.Unlock()
}

func (r *Registry) TextFallback() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textFallback
}

// InitBotCommands publishes the menu-listed commands to Telegram.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
