// Package agent provides the core brainstorming loop for the Brainstorm CLI.
//
// This package contains the code shared between the different front ends
// (terminal REPL and websocket server). It defines the Agent type, which owns
// one session, and the dispatch of user input into either slash commands or
// chat turns with the configured LLM client.
//
// # Architecture
//
//   - Core agent (this package): the Agent type and command dispatch
//   - Terminal subpackage (agent/terminal): the interactive CLI front end
//   - Websocket subpackage (agent/wsserver): one agent per websocket connection
//
// # Usage
//
//	a := agent.New(cfg, sess, store, client, logger)
//
//	callbacks := agent.ProcessCallbacks{
//	    OnAssistantMessage: func(text string) { /* show reply */ },
//	    OnInfo:             func(text string) { /* show command output */ },
//	    OnWarning:          func(text string) { /* show non-fatal problem */ },
//	    OnArtifact:         func(a session.Artifact, path string) { /* announce export */ },
//	}
//
//	exit, err := a.ProcessUserInput(ctx, "/artifact lean-canvas", callbacks)
//
// # Commands
//
// Input starting with "/" is a command; see /help for the list. Unknown
// commands produce a warning and are never sent to the model. Everything
// else is a chat turn: the user message is appended, the client is asked for
// a reply with the previous messages as history, and the reply is appended.
// With autosave enabled the session is written after every turn and every
// command that changes it.
package agent
