package utils

const (
	// SlugParamKey is the key for the page slug used in routing parameters.
	SlugParamKey = "slug"

	// TokenParamKey is the key for the reset token used in routing parameters.
	TokenParamKey = "token"

	// TokenQueryKey is the query parameter carrying the reset token in emailed links.
	TokenQueryKey = "token"
)
