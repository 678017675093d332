// Package sse implements the streaming protocol core for the Kai
// conversational-agent service: the Server-Sent-Events line decoder, the
// dual-dialect event normalizer, the tool-call lifecycle tracker, and
// the stream accumulator.
//
// # Wire dialects
//
// The backend emits two incompatible event shapes. The local development
// server sends whole records ("text", "tool-call" with a state field),
// while production runs an upstream SDK that sends incremental ones
// ("text-delta", "tool-input-start", "tool-input-available",
// "tool-output-available"). Both normalize into one Event union via a
// fixed dispatch table, so consumers never see the dialect split.
// Unrecognized wire types degrade to UnknownEvent instead of failing,
// keeping the client forward compatible.
//
// # Basic usage
//
//	dec := sse.NewDecoder(resp.Body)
//	acc := sse.NewAccumulator()
//	tracker := sse.NewTracker()
//
//	for {
//	    evt, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err // *sse.ParseError or *sse.TransportError
//	    }
//	    acc.ProcessEvent(evt)
//	    tracker.Observe(evt)
//	}
//
//	fmt.Println(acc.Text())
//	for _, pending := range tracker.Pending() {
//	    // resolve via kai.Client approve/deny, branching on
//	    // pending.Generation()
//	}
//
// # Tool approval
//
// A tool call that announces its full input ("input-available") without
// a later output or error is pending: the backend has paused mid-stream
// awaiting an external approve/deny decision. Two protocol generations
// coexist. The newer one attaches an approval ticket to the call; the
// older one uses the tool-call id itself as the decision handle. The
// Tracker detects the generation per pending call so each is resolved
// with the correct continuation request shape.
//
// Accumulator and Tracker instances are owned by a single stream
// consumption. Concurrent streams each need their own instances; the
// package never shares mutable state between streams.
package sse
