package settings

// DB config keys and defaults for platform settings.
const (
	// SiteNameKey is the DB config key for the platform display name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback platform display name.
	DefaultSiteName = "Newsdesk"
	// DefaultLanguageKey is the DB config key for the platform default language.
	DefaultLanguageKey = "DEFAULT_LANGUAGE"
	// DefaultDefaultLanguage is the fallback content language code.
	DefaultDefaultLanguage = "te"
	// AIGenerateRateLimitKey controls AI generation requests per second per user.
	AIGenerateRateLimitKey = "AI_GENERATE_RATE_LIMIT"
	// AIRateLimitRedisEnabledKey toggles Redis-backed rate limiting.
	AIRateLimitRedisEnabledKey = "AI_RATE_LIMIT_REDIS_ENABLED"
	// AIRateLimitRedisAddrKey defines the Redis address for rate limiting.
	AIRateLimitRedisAddrKey = "AI_RATE_LIMIT_REDIS_ADDR"
	// AIRateLimitRedisPasswordKey defines the Redis password for rate limiting.
	AIRateLimitRedisPasswordKey = "AI_RATE_LIMIT_REDIS_PASSWORD"
	// AIRateLimitRedisDBKey defines the Redis DB index for rate limiting.
	AIRateLimitRedisDBKey = "AI_RATE_LIMIT_REDIS_DB"
	// AIRateLimitRedisPrefixKey defines the Redis key prefix for rate limiting.
	AIRateLimitRedisPrefixKey = "AI_RATE_LIMIT_REDIS_PREFIX"
	// GeminiAPIKeyKey holds the Gemini API key for AI generation.
	GeminiAPIKeyKey = "GEMINI_API_KEY"
	// GeminiModelKey holds the Gemini model name for AI generation.
	GeminiModelKey = "GEMINI_MODEL"
	// DefaultGeminiModel is the fallback Gemini model name.
	DefaultGeminiModel = "gemini-2.0-flash"
	// WhatsAppEndpointKey holds the WhatsApp gateway base URL.
	WhatsAppEndpointKey = "WHATSAPP_ENDPOINT"
	// WhatsAppTokenKey holds the WhatsApp gateway bearer token.
	WhatsAppTokenKey = "WHATSAPP_TOKEN"
	// SubscriptionPollIntervalSecondsKey controls the subscription poll interval in seconds.
	SubscriptionPollIntervalSecondsKey = "SUBSCRIPTION_POLL_INTERVAL_SECONDS"
	// DefaultSubscriptionPollIntervalSeconds is the fallback poll interval (seconds).
	DefaultSubscriptionPollIntervalSeconds = 300
	// DefaultAIGenerateRateLimit is the fallback AI rate limit (0 means unlimited).
	DefaultAIGenerateRateLimit = 2
	// DefaultAIRateLimitRedisPrefix is the fallback Redis key prefix.
	DefaultAIRateLimitRedisPrefix = "nd:rl"
)
