// Package counter implements the stateless counter widget: the callback token
// codec, the state transition function and the keyboard layout.
//
// The rendered keyboard is the only place a counter's state lives. Every button
// carries a token with the current value and settings, so pressing it is enough
// to compute the next state.
package counter
