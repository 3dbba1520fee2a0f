// Package conversation keeps the turn history of a chat session.
//
// A History is an in-memory, process local transcript shared by a generator
// and the assistant loop. It is safe for concurrent access and never hands out
// its internal slice.
package conversation
