// Package storage provides workflow definition storage and retrieval.
//
// This package implements an in-memory store for the JSON documents
// accepted by pkg/dsl, allowing definitions to be saved, loaded, listed,
// and deleted by ID.
//
// # Usage
//
//	store := storage.NewInMemoryStore()
//
//	id, err := store.Save("nightly-build", "builds the nightly image", data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	def, err := store.Load(id)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	all := store.List()
//
// # Security Considerations
//
// The in-memory store is suitable for development and testing but should
// not be used in production without persistence. For production use,
// back the Store interface with a real database.
package storage
