package clients

import "time"

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
	REDDIT_WEB_URL  = "https://www.reddit.com"

	MAX_RETRIES     = 4
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 16 * time.Second
	REQUEST_SPACING = 1 * time.Second

	GEMINI_INPUT_BUDGET = 30000
	OPENAI_INPUT_BUDGET = 25000

	generationRequestTimeout = 60 * time.Second
)
