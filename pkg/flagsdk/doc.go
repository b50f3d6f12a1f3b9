/*
Package flagsdk is a client for the flagtree feature-flag service.

# Overview

Flags form a forest: each flag may name a parent, and a flag is effectively
enabled only when it and every ancestor are enabled. The service stores each
flag's own bit; the effective state is computed on read.

	client := flagsdk.NewClient("https://flags.example.com", flagsdk.StaticToken(accessToken))

	parent := "events"
	_, err := client.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "events"})
	_, err = client.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "events.create", Parent: &parent})

	_, err = client.SetEnabled(ctx, "events", true)
	_, err = client.SetEnabled(ctx, "events.create", true)

	on, err := client.IsEnabled(ctx, "events.create") // true

# Authentication

Management endpoints expect a bearer token carrying flags:read or
flags:write. IsEnabled and the health probes are public, so a client used
only for checks can be built with a nil TokenSource.

# Error Handling

Failure responses decode to *APIError. Compare against the predefined
values with errors.Is; matching is by error code:

	_, err := client.Reparent(ctx, "events", &child)
	if errors.Is(err, flagsdk.ErrCycleDetected) {
		// the move would have looped the hierarchy
	}

# Own State and Effective State

Flag.Enabled and ListFlags(StateEnabled) report the flag's own bit only.
IsEnabled and the Effective field of ListTree include the ancestors.
*/
package flagsdk
