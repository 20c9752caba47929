/*
Package domain contains the core domain models of the Broilr conversation engine.

It defines the entities the dialogue state machine operates on: the conversation
Session, its Stage, the Recipe records received from the backend, and the
Transcript shown to the user. This package is kept pure and free of external
dependencies like I/O or persistence.

# Key Entities

  - Stage: a named state of the conversation that decides how the next utterance is read.
  - Session: the mutable state of one conversation (stage, dish, pending work, active recipe, step cursor).
  - Pending: a tagged union holding either the follow-up question queue or the recipe candidate list.
  - Recipe: a backend-owned, read-only record with ingredients and ordered steps.
  - Message / Transcript: the append-only chat log.
*/
package domain
