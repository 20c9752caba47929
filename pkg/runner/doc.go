/*
Package runner implements the interactive loop that connects a conversation
to a terminal or to a structured stream.

The runner reads one utterance at a time through an IOHandler, submits it to
a broilr.Conversation and hands the assistant replies back to the handler.
OS signals are captured by a SignalManager so Ctrl+C ends the session cleanly
while waiting for input, and interrupts a pending backend call otherwise.

# Key Components

  - Runner: the read-submit-print loop.
  - IOHandler: decouples how utterances arrive and replies leave (text, JSON).
  - TextHandler: interactive CLI usage with a "> " prompt.
  - JSONHandler: newline-delimited JSON for scripted or headless usage.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithLogger(logger),
	)
	if err := r.Run(ctx, conv); err != nil {
		log.Fatal(err)
	}
*/
package runner
