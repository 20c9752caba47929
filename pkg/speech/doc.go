/*
Package speech drives voice input for a conversation.

The Controller is an explicit state machine with three states (idle, capturing,
cooldown) moved by four events (started, result, ended, disarmed). One
goroutine owns the machine; recognized transcripts are queued to a second
goroutine that feeds them to the conversation, so a transcript never starts a
transition while another is still running.

Captures restart on their own only while the user is cooking, after a short
cooldown that keeps the assistant's own voice from being picked up. Outside
cooking, the next assistant message re-arms the capture.
*/
package speech
