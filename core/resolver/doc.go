// Package resolver computes the load order of mods from their declared dependencies.
//
// An edge A -> B means "A loads before B". A dependency with ordering After adds an edge from the
// target to the dependent mod, Before adds the inverse, and None only checks presence.
//
// Resolution never fails. It runs in two passes:
//
//  1. Required edges only. Strongly connected components with more than one mod are cycles that
//     cannot be broken; those mods are removed from the graph and appended to the end of the
//     order in lexical order, each component reported as a TrulyCyclicDependency warning.
//  2. Optional edges are folded into the remaining graph one at a time, in lexical (from, to)
//     order. An edge that would close a loop is dropped and reported as a CircularDependency
//     warning plus a FormerlyCyclicDependency warning naming the edge.
//
// The final order is a Kahn topological sort whose ready set is ordered by position in the
// hint (the previous order) and then by mod id, which keeps the output stable between runs.
// Disabled mods never enter the graph but keep their place relative to the hint, so every
// input id appears in the result exactly once.
package resolver
