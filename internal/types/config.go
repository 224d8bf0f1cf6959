package types

type RunMode string

const (
	// ModeLocal runs the API server together with the in-process event router
	ModeLocal RunMode = "local"
	// ModeAPI runs just the API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI runs the API server behind an AWS Lambda function
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ProfileSource selects which backend serves profile lookups
type ProfileSource string

const (
	ProfileSourcePostgres ProfileSource = "postgres"
	ProfileSourceSupabase ProfileSource = "supabase"
)
