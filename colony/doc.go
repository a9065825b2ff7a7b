// Package colony is a discrete-time ant foraging simulation
//
// Agents sense two sparse pheromone fields (home and food), steer by blending the
// strongest sensed signal with exploration noise and, when laden, the nest bearing,
// move with edge reflection, pick up and deliver food, and lay throttled deposits.
// Fields evaporate at a lower cadence than movement.
//
// The package is single-threaded. A World must only be touched by one goroutine at a
// time; hosts serialize ticks and take copies for rendering.
package colony
