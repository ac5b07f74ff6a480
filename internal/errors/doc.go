// Package errors provides structured errors for simulation commands.
//
// Commands issued against the world never panic and never leave partial
// state behind. When a command is refused it returns an *Error whose Code
// tells the caller why:
//
//	err := world.TrainUnit(barracksID, "Knight")
//	if errors.IsResourceExhausted(err) {
//	    // not enough gold/food, or population is capped
//	}
//
// Metadata can be attached for logging:
//
//	errors.ResourceExhausted("cannot afford building").
//	    WithMeta("kind", kind).
//	    WithMeta("missing", missing)
package errors
