// Package sim hosts network simulation scenarios on the nsfx component runtime.
//
// # Reading Guide
//
// Start with these files:
//   - scenario.go: the YAML scenario format and its validation
//   - host.go: wiring of registry, scheduler, simulator, traffic and trace for one run
//
// # Architecture
//
// The runtime itself lives in sub-packages:
//   - sim/component/: interface ids, reference-counted objects, aggregation, factories and the class registry
//   - sim/event/: event-sink adapters and connectable events
//   - sim/chrono/: simulated time points
//   - sim/buffer/: packet buffers with a zero-compressed payload region
//   - sim/simulation/: list and heap event schedulers and the simulator run loop
//   - sim/random/: xoroshiro engines, partitioned seeding and distributions
//   - sim/traffic/: flows of packets sent through a scheduler
//   - sim/trace/: run records, summaries, export formats and digests
//
// Components are created through a component.Registry populated by
// simulation.Register; NewRegistry returns one ready for a Host.
package sim
