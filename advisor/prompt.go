package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"agrichat/types"
)

// analysisSchema constrains the model to the AdvisorResponse shape so the
// reply parses without shape guessing.
var analysisSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"text": {"type": "STRING", "description": "The response text (question or confirmation)."},
		"isAnalysisComplete": {"type": "BOOLEAN", "description": "True ONLY if crop, disease, stage, and severity are known."},
		"analysisResult": {
			"type": "OBJECT",
			"description": "Structured analysis result. Only required if isAnalysisComplete is true.",
			"properties": {
				"summary": {
					"type": "OBJECT",
					"properties": {
						"crop": {"type": "STRING"},
						"disease": {"type": "STRING"},
						"stage": {"type": "STRING"},
						"severity": {"type": "STRING"}
					}
				},
				"decision": {
					"type": "OBJECT",
					"properties": {
						"action": {"type": "STRING", "enum": ["spray", "no_spray", "monitor"]},
						"label": {"type": "STRING"},
						"reason": {"type": "STRING"}
					}
				},
				"ingredients": {
					"type": "ARRAY",
					"items": {
						"type": "OBJECT",
						"properties": {
							"id": {"type": "STRING"},
							"name": {"type": "STRING"},
							"mechanism": {"type": "STRING"},
							"priority": {"type": "STRING", "enum": ["High", "Medium", "Low"]}
						}
					}
				},
				"products": {
					"type": "ARRAY",
					"items": {
						"type": "OBJECT",
						"properties": {
							"id": {"type": "STRING"},
							"name": {"type": "STRING"},
							"activeIngredient": {"type": "STRING"},
							"formulation": {"type": "STRING"},
							"usage": {"type": "STRING"},
							"description": {"type": "STRING"}
						}
					}
				},
				"warnings": {"type": "ARRAY", "items": {"type": "STRING"}}
			}
		}
	},
	"required": ["text", "isAnalysisComplete"]
}`)

// formatHistory renders the trailing text turns as labeled lines for the
// prompt context. Structured messages carry no conversational signal upstream
// and are skipped.
func formatHistory(history []types.Message, limit int) string {
	var lines []string
	for _, m := range history {
		if m.Kind != types.KindText {
			continue
		}
		speaker := "Officer"
		if m.Role == types.RoleUser {
			speaker = "Farmer"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Content))
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return strings.Join(lines, "\n")
}

func toneDirective(bot types.BotConfig) string {
	var b strings.Builder
	switch bot.Tone {
	case types.ToneExpert:
		b.WriteString("- Answer as a seasoned plant-protection expert, precise and technical.\n")
	case types.ToneHumorous:
		b.WriteString("- Keep a light, gently humorous tone while staying accurate.\n")
	case types.ToneWestern:
		b.WriteString("- Speak in the warm, folksy register of the Vietnamese Mekong Delta (miền Tây).\n")
	default:
		b.WriteString("- Keep a friendly, approachable tone.\n")
	}
	if bot.Length == types.LengthDetailed {
		b.WriteString("- Give thorough, complete explanations.\n")
	} else {
		b.WriteString("- Keep answers short and to the point.\n")
	}
	return b.String()
}

func buildPrompt(input string, bot types.BotConfig, history []types.Message, limit int) string {
	return fmt.Sprintf(`You are a professional Agricultural Officer (Cán bộ BVTV) helping a farmer.

YOUR GOAL: Provide a neutral, safe, and professional consultation. Do NOT act like a salesperson.

PROCESS:
1.  **Information Collection**: You must collect the following 4 pieces of information before giving advice. Ask ONE question at a time if information is missing.
    - Crop type (Cây gì)
    - Disease/Symptoms (Bệnh gì/Triệu chứng)
    - Growth Stage (Giai đoạn sinh trưởng)
    - Severity/Location (Mức độ/Vị trí)
2.  **Analysis**: Once you have all 4 pieces of information, output the analysis result.

TONE:
- Professional, calm, trustworthy, field-oriented.
- Use "Cân nhắc" (Consider) instead of "Phải" (Must).
- Use "Phù hợp" (Suitable) instead of "Tốt nhất" (Best).
%s
CONTEXT FROM CHAT:
%s

CURRENT INPUT: "%s"

INSTRUCTIONS:
- If information is missing, set 'isAnalysisComplete' to false and ask the next question in 'text'. Explain WHY you are asking (e.g., "Để chọn thuốc đúng, bác cho biết lúa đang giai đoạn nào?").
- If information is sufficient, set 'isAnalysisComplete' to true, set 'text' to a short confirmation (e.g., "Tôi đã nắm được tình hình. Đang phân tích..."), and fill the 'analysisResult' object.
`, toneDirective(bot), formatHistory(history, limit), input)
}
