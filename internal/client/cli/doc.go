// Package cli provides the gophauth command-line client.
//
// Invoked with a subcommand (register, login, whoami, logout) it runs that
// command once and exits. Without one it starts an interactive prompt. In
// both cases a session cached by an earlier login is restored first, so
// whoami works across invocations until the token expires or the user logs
// out.
package cli
