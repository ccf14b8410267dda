package types

type SessionID string
type MessageID string

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

type BotTone string

const (
	ToneFriendly BotTone = "friendly"
	ToneExpert   BotTone = "expert"
	ToneHumorous BotTone = "humorous"
	ToneWestern  BotTone = "western"
)

type BotLength string

const (
	LengthConcise  BotLength = "concise"
	LengthDetailed BotLength = "detailed"
)

// BotVoices lists the prebuilt voices offered by the speech model.
var BotVoices = []string{"Kore", "Puck", "Charon", "Fenrir", "Aoede"}

type BotConfig struct {
	Tone   BotTone   `json:"tone" yaml:"tone"`
	Length BotLength `json:"length" yaml:"length"`
	Voice  string    `json:"voice" yaml:"voice"`
}

func DefaultBotConfig() BotConfig {
	return BotConfig{Tone: ToneFriendly, Length: LengthConcise, Voice: "Puck"}
}

type Ingredient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Mechanism string `json:"mechanism"`
	Priority  string `json:"priority,omitempty"` // High | Medium | Low
}

type Product struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ActiveIngredient string `json:"activeIngredient"`
	Formulation      string `json:"formulation"`
	Description      string `json:"description,omitempty"`
	Usage            string `json:"usage,omitempty"`
}

type Store struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Distance string   `json:"distance"`
	Tags     []string `json:"tags"`
	Phone    string   `json:"phone"`
	Address  string   `json:"address"`
}

type DecisionAction string

const (
	ActionSpray   DecisionAction = "spray"
	ActionNoSpray DecisionAction = "no_spray"
	ActionMonitor DecisionAction = "monitor"
)

type AnalysisSummary struct {
	Crop     string `json:"crop"`
	Disease  string `json:"disease"`
	Stage    string `json:"stage"`
	Severity string `json:"severity"`
}

type Decision struct {
	Action DecisionAction `json:"action"`
	Label  string         `json:"label"`
	Reason string         `json:"reason"`
}

type AnalysisResult struct {
	Summary     AnalysisSummary `json:"summary"`
	Decision    Decision        `json:"decision"`
	Ingredients []Ingredient    `json:"ingredients"`
	Products    []Product       `json:"products"`
	Warnings    []string        `json:"warnings"`
}

type UserProfile struct {
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Crops       []string `json:"crops,omitempty"`
}

type ChatSession struct {
	ID        SessionID `json:"id"`
	Title     string    `json:"title"`
	Timestamp int64     `json:"timestamp"` // unix millis of the last mutation
	Messages  []Message `json:"messages"`
	Preview   string    `json:"preview"`
}

// AdvisorResponse is the single-shot analysis contract: Text always carries the
// reply to show in the transcript; Result is set only when AnalysisComplete.
type AdvisorResponse struct {
	Text             string          `json:"text"`
	AnalysisComplete bool            `json:"isAnalysisComplete"`
	Result           *AnalysisResult `json:"analysisResult,omitempty"`
}

// CalculatorInputs are the last-used values of the sweet potato calculator,
// restored when the screen reopens.
type CalculatorInputs struct {
	BagCount   float64 `json:"bagCount"`
	BagWeight  float64 `json:"bagWeight"`
	TaWeight   float64 `json:"taType"`
	PricePerTa float64 `json:"pricePerTa"`
	Deposit    float64 `json:"deposit"`
	AreaSize   float64 `json:"areaSize"`
	AreaUnit   string  `json:"areaUnit"`
}
