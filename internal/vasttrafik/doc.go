// Package vasttrafik is a small client for the Västtrafik Planera Resa v4 API.
//
// It covers only what a departure board needs: the raw departure model as the
// upstream returns it, the stop-area departures endpoint with its fixed query
// policy, and the error kinds shared with the token exchange.
//
// Records are decoded as-is. Optional upstream objects are pointers so callers
// can tell an absent object apart from an empty one:
//
//	deps, err := client.StopAreaDepartures(ctx, token, "9021014001960000")
//	for _, d := range deps {
//		if d.ServiceJourney == nil {
//			continue // not journey based
//		}
//	}
package vasttrafik
