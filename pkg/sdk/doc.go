// Package sdk is the embedded petsearch client: it wires the vector store,
// the embedding provider and the hybrid search pipeline in-process, without
// the HTTP server. Use it to ingest a catalog and run constraint searches
// from Go code directly.
//
//	client, err := sdk.New(ctx,
//		sdk.WithAddrs("localhost:6379"),
//		sdk.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	matches, err := client.Search(ctx, intent.Intent{
//		Query:      "dog food",
//		Exclusions: []string{"salmon"},
//	}, 5)
package sdk
