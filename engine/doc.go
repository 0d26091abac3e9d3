// Package engine implements the flow controller of the portfolio assistant.
//
// A turn is driven through a linear state machine with an explicit
// transition table:
//
//	Start ─▶ Retrieving ─▶ Planning ─▶ Enriching ─▶ Generating ─▶ Executing ─▶ Logging ─▶ Done
//	  │
//	  └────▶ ConfessionShortCircuit
//
// # Stages
//
//   - Retrieving: embeds the query and fetches the top-k evidence chunks
//   - Planning: classifies the query and computes the action plan
//   - Enriching: builds the role-conditioned prompt context
//   - Generating: calls the model, falling back to the role's apology
//   - Executing: runs side-effecting actions detached from the caller
//   - Logging: writes one analytics event, always
//
// A confession never enters retrieval or generation. It is stored and
// acknowledged with the policy's fixed text.
//
// # Concurrency
//
// Turns of the same session are serialized by a session.Locker held around
// load, pipeline and save (Turn) or around the pipeline alone (HandleTurn,
// for callers that manage state themselves). The role table is shared
// read-only between all turns.
//
// # Callbacks
//
// A CallbackManager exposes transitions, degradations and completed turns
// to callers, e.g. for metrics. Callback errors are logged and never change
// the answer.
//
// # Example
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Retriever = retriever.New(store, embedder)
//	    o.Generator = generator.New(openai.NewModel())
//	})
//
//	res, err := eng.Turn(ctx, "session-1", "Software Developer", "How is the indexer built?")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Answer)
package engine
