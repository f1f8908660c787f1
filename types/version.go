package types

// Version is the canonical project version.
// The CLI, the user-agent product identifier, and the webhook event payload
// share this version per the lockstep versioning policy.
const Version = "1.2.0"
