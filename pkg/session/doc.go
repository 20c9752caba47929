/*
Package session keeps the live conversations of the network surfaces (HTTP and MCP).

Each conversation gets a random ID and lives in memory until it is deleted or
sits idle longer than the configured TTL. Conversation state is never
persisted: a restart forgets every conversation, by design of the product.
*/
package session
