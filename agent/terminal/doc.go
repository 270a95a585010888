// Package terminal implements the interactive command-line mode for the
// Brainstorm agent.
//
// The terminal reads one line at a time from an injected reader, hands it to
// the agent, and prints replies, command output and warnings to an injected
// writer. Assistant replies are framed by blank lines so they stand apart
// from the "You: " prompt.
//
// # Usage
//
//	a := agent.New(cfg, sess, store, client, logger)
//	term := terminal.New(a, os.Stdin, os.Stdout)
//	err := term.Run(ctx, initialPrompt)
//
// An initial prompt is processed before the first read. /exit and /quit save
// the session and stop the loop; reaching end of input does the same.
package terminal
