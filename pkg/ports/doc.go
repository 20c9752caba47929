/*
Package ports defines the driven ports (interfaces) for the Broilr engine.

These interfaces decouple the conversation logic from external implementations,
allowing the engine to work against a remote recipe service or an in-memory one,
and to keep the user's identity in a file, Redis or memory.

# Key Interfaces

  - RecipeBackend: request/response operations of the recipe service (auth, listing, generation, Q&A, save, delete).
  - IdentityStore: persists the logged-in username across restarts.
  - Recognizer: starts one speech capture and reports its transcripts.
*/
package ports
