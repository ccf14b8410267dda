package types

import (
	"encoding/json"
	"fmt"
)

type MessageKind string

const (
	KindText     MessageKind = "text"
	KindAnalysis MessageKind = "analysis_result"
	KindStores   MessageKind = "stores"

	// Legacy kinds written by the incremental-disclosure revision of the
	// advisor contract. Still decoded so old histories remain readable, and
	// still produced by the offline action handlers.
	KindIngredients MessageKind = "ingredients"
	KindProducts    MessageKind = "products"
	KindActions     MessageKind = "actions"
)

// WelcomeID is the fixed identifier of the greeting that seeds every session.
// Title rewriting on the first user turn keys off it.
const WelcomeID MessageID = "welcome"

const welcomeText = "Chào bác. Tôi là trợ lý BVTV. Để hỗ trợ tốt nhất, bác cho tôi biết bác đang canh tác cây gì và đang gặp vấn đề gì ạ?"

// Message is one entry in a chat transcript. Exactly one payload field is set,
// selected by Kind: Content for text, Result for analysis_result, and the
// corresponding slice for stores/ingredients/products. An actions message
// carries no payload.
type Message struct {
	ID   MessageID
	Role Role
	Kind MessageKind

	Content     string
	Result      *AnalysisResult
	Stores      []Store
	Ingredients []Ingredient
	Products    []Product
}

func WelcomeMessage() Message {
	return Message{ID: WelcomeID, Role: RoleBot, Kind: KindText, Content: welcomeText}
}

func TextMessage(id MessageID, role Role, content string) Message {
	return Message{ID: id, Role: role, Kind: KindText, Content: content}
}

// Structured reports whether the message carries a domain payload rather than
// plain text.
func (m Message) Structured() bool {
	return m.Kind != KindText && m.Kind != KindActions
}

type messageWire struct {
	ID      MessageID       `json:"id"`
	Role    Role            `json:"role"`
	Kind    MessageKind     `json:"type"`
	Content string          `json:"content,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	w := messageWire{ID: m.ID, Role: m.Role, Kind: m.Kind, Content: m.Content}

	var payload interface{}
	switch m.Kind {
	case KindText, KindActions:
	case KindAnalysis:
		payload = m.Result
	case KindStores:
		payload = m.Stores
	case KindIngredients:
		payload = m.Ingredients
	case KindProducts:
		payload = m.Products
	default:
		return nil, fmt.Errorf("unknown message kind %q", m.Kind)
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", m.Kind, err)
		}
		w.Data = data
	}
	return json.Marshal(w)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var w messageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Message{ID: w.ID, Role: w.Role, Kind: w.Kind, Content: w.Content}
	switch w.Kind {
	case KindText, KindActions:
	case KindAnalysis:
		if len(w.Data) > 0 {
			out.Result = &AnalysisResult{}
			if err := json.Unmarshal(w.Data, out.Result); err != nil {
				return fmt.Errorf("failed to decode analysis payload: %w", err)
			}
		}
	case KindStores:
		if err := unmarshalPayload(w.Data, &out.Stores); err != nil {
			return err
		}
	case KindIngredients:
		if err := unmarshalPayload(w.Data, &out.Ingredients); err != nil {
			return err
		}
	case KindProducts:
		if err := unmarshalPayload(w.Data, &out.Products); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown message kind %q", w.Kind)
	}

	*m = out
	return nil
}

func unmarshalPayload(data json.RawMessage, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode message payload: %w", err)
	}
	return nil
}
