// Package events provides the typed event model and the coordinating bus
// for the multimodal input system.
//
// # Overview
//
// Independent perception components (eye tracker, gesture recognizer,
// voice recognizer) run concurrently and emit discrete semantic events.
// The Bus converts those concurrent streams into a single, consistent
// stream of admitted events:
//
//	┌──────────┐
//	│   eye    │──Emit──┐
//	└──────────┘        │      ┌───────────────┐        ┌────────────┐
//	┌──────────┐        ├─────▶│      Bus      │──────▶ │ Dispatcher │
//	│ gesture  │──Emit──┤      │ (single loop) │        │  (mapper)  │
//	└──────────┘        │      └───────────────┘        └────────────┘
//	┌──────────┐        │
//	│  voice   │──Emit──┘
//	└──────────┘
//
// # Admission
//
// Each event passes through, in order: the pause gate (events are dropped
// while PAUSED unless they are control events or resolve to the reserved
// pause toggle action), a malformed-event check, last-active
// bookkeeping for the emitting source, and the conflict check. An event is
// blocked when another source is still active within its recency window,
// the conflict matrix disallows the pair, and the other source's priority
// rank is strictly greater.
//
// # Ordering and concurrency
//
// Producers only ever touch the bounded ingestion queue; all coordination
// state (last-active map, pause state, cooldowns downstream) is owned by
// the single consumer loop. Events from one source are processed in
// submission order, and cross-source ordering follows queue admission
// order. Priority influences blocking decisions, never reordering, which
// keeps behavior reproducible under a fixed interleaving.
//
// # Degradation
//
// Every runtime failure mode (unknown source or type, blocked, throttled,
// paused drop, queue overflow, executor failure, dispatcher stall) is
// non-fatal: the event is dropped, a counter is incremented, and the loop
// moves on. Configuration invariant violations are rejected at startup by
// the source registry instead.
package events
