package session

import (
	"context"
	"fmt"

	"agrichat/catalog"
	"agrichat/types"
	"agrichat/util"
)

// Advisor produces the bot side of a consultation turn.
type Advisor interface {
	Analyze(ctx context.Context, input string, bot types.BotConfig, history []types.Message) types.AdvisorResponse
}

// ActionKind identifies one of the quick-action buttons offered after the
// conversation reaches a structured outcome.
type ActionKind string

const (
	ActionIngredients ActionKind = "ingredients"
	ActionProducts    ActionKind = "products"
	ActionStores      ActionKind = "stores"
)

// BeginTurn appends the farmer's message and flips the loading flag. The very
// first real message also becomes the session title.
func (a *App) BeginTurn(text string) {
	if len(a.messages) == 1 && a.messages[0].ID == types.WelcomeID {
		a.setTitle(util.Truncate(text, titleMaxRunes))
	}
	a.appendMessage(types.TextMessage(newMessageID(), types.RoleUser, text))
	a.loading = true
}

// Analyze runs the advisor against the transcript as it stands. The user
// message from BeginTurn is already part of the history.
func (a *App) Analyze(ctx context.Context, text string) types.AdvisorResponse {
	history := append([]types.Message(nil), a.messages...)
	return a.advisor.Analyze(ctx, text, a.bot, history)
}

// CompleteTurn appends the bot reply and, when the advisor finished its
// assessment, the structured result message. A completed assessment switches
// straight to the result screen with the input mode back on default; actions
// mode is only derived when a stored session is reopened. Loading clears
// unconditionally.
func (a *App) CompleteTurn(resp types.AdvisorResponse) {
	a.loading = false
	a.appendMessage(types.TextMessage(newMessageID(), types.RoleBot, resp.Text))

	if !resp.AnalysisComplete || resp.Result == nil {
		return
	}
	a.appendMessage(types.Message{
		ID:     newMessageID(),
		Role:   types.RoleBot,
		Kind:   types.KindAnalysis,
		Result: resp.Result,
	})
	a.result = resp.Result
	a.inputMode = InputDefault
	a.view = ViewResult
}

// SendMessage runs a whole turn synchronously. The interactive UI drives
// BeginTurn, Analyze and CompleteTurn separately so the spinner can animate
// while the advisor call is in flight.
func (a *App) SendMessage(ctx context.Context, text string) {
	a.BeginTurn(text)
	a.CompleteTurn(a.Analyze(ctx, text))
}

// HandleAction resolves a quick-action button into a scripted user message
// plus a structured bot reply from the built-in reference data. No advisor
// round trip happens.
func (a *App) HandleAction(kind ActionKind) {
	var (
		userText string
		reply    types.Message
	)
	switch kind {
	case ActionIngredients:
		userText = "Xem các hoạt chất trị bệnh"
		reply = types.Message{Kind: types.KindIngredients, Ingredients: catalog.Ingredients()}
	case ActionProducts:
		userText = "Tham khảo một số thuốc"
		reply = types.Message{Kind: types.KindProducts, Products: catalog.Products()}
	case ActionStores:
		userText = "Tìm cửa hàng gần đây"
		reply = types.Message{Kind: types.KindStores, Stores: catalog.Stores()}
	default:
		return
	}

	a.appendMessage(types.TextMessage(newMessageID(), types.RoleUser, userText))
	reply.ID = newMessageID()
	reply.Role = types.RoleBot
	a.appendMessage(reply)
}

// FindStoreForProduct jumps from a recommended product back into the chat
// with a store listing for it.
func (a *App) FindStoreForProduct(name string) {
	text := fmt.Sprintf("Tìm nơi bán thuốc %s gần đây", name)
	a.appendMessage(types.TextMessage(newMessageID(), types.RoleUser, text))
	a.appendMessage(types.Message{
		ID:     newMessageID(),
		Role:   types.RoleBot,
		Kind:   types.KindStores,
		Stores: catalog.Stores(),
	})
	a.view = ViewChat
}
