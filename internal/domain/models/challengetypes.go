package models

// Canonical challenge field identifiers.
//
// These values are stored in Challenge.Field and used as stable keys;
// human-facing labels belong to the client.
const (
	FieldNextJS   = "nextjs"
	FieldModernJS = "modernjs"
	FieldAPI      = "api"
	FieldWeb      = "web"
	FieldCareer   = "career"
)

// ChallengeFields is the full set of allowed field identifiers.
var ChallengeFields = []string{
	FieldNextJS,
	FieldModernJS,
	FieldAPI,
	FieldWeb,
	FieldCareer,
}

// Canonical document type identifiers stored in Challenge.DocType.
const (
	DocTypeOfficial = "official"
	DocTypeBlog     = "blog"
)

// DocTypes is the full set of allowed document type identifiers.
var DocTypes = []string{
	DocTypeOfficial,
	DocTypeBlog,
}

// MinChallengeCapacity is the smallest participant limit a challenge may have.
const MinChallengeCapacity = 2
