package llm

// DefaultInstructions is the system prompt sent with every chunk.
const DefaultInstructions = `You are an assistant that writes study summaries. Write a concise, well-structured summary of the provided text, highlighting the main ideas and key points. Use bulleted lists and a clear structure.`

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)
