// Package kai is a Go client for the Kai conversational-agent backend.
//
// The backend exposes a JSON control plane (health, info, history,
// votes, deletion) and an SSE streaming plane for conversation turns.
// Streaming responses are normalized by the sse package into one event
// model regardless of which wire dialect the deployment speaks.
//
// # Basic usage
//
//	client, err := kai.NewFromStorageAPI(ctx, token, storageURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	chatID, answer, err := client.Chat(ctx, "", "What is Keboola?")
//
// # Tool approval
//
// Side-effecting tools pause mid-stream until approved. Track pending
// calls with an sse.Tracker and resolve each with the continuation its
// protocol generation requires:
//
//	events, errCh, _ := client.SendMessage(ctx, chatID, prompt)
//	acc, tracker := sse.NewAccumulator(), sse.NewTracker()
//	if err := kai.Consume(events, errCh, acc, tracker); err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, pending := range tracker.Pending() {
//	    events, errCh, _ := client.ResolvePending(ctx, chatID, pending, true, "looks safe")
//	    if err := kai.Consume(events, errCh, acc, tracker); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// A conversation may pause for approval multiple times; every
// continuation stream feeds the same Tracker and Accumulator so
// lifecycle state stays consistent across resume cycles.
package kai
