package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"finance_navigator/internal/metrics"
	"finance_navigator/internal/models"
)

// Canned replies used when the upstream model is unavailable. The chat
// stays usable either way; it just stops being smart.
const (
	ReplyNoAPIKey = "AI 助理未設定 API 金鑰，目前無法使用。"
	ReplyFailure  = "抱歉，我現在無法回答。請稍後再試。"

	// Greeting opens every new conversation on the client.
	Greeting = "你好！我是您的個人財務助理 Navi。請問有什麼可以為您服務的嗎？例如，您可以問我「我上個月的花費狀況如何？」或「我該如何更快達成我的儲蓄目標？」"
)

// Service answers chat messages with the user's financial summary as
// context.
type Service struct {
	client *GeminiClient
}

// NewService creates a new assistant Service.
func NewService(client *GeminiClient) *Service {
	return &Service{client: client}
}

// goalSummary is the compact goal view embedded in the prompt.
type goalSummary struct {
	Name     string `json:"name"`
	Progress string `json:"progress"`
}

// financialSummary is the data digest handed to the model. Amounts are
// rounded to whole TWD; the model does not need cents.
type financialSummary struct {
	TotalAssets      string        `json:"totalAssets"`
	LastMonthIncome  string        `json:"lastMonthIncome"`
	LastMonthExpense string        `json:"lastMonthExpense"`
	Goals            []goalSummary `json:"goals"`
}

// Summarize builds the JSON data digest from a processed portfolio,
// cashflow history and goals. "Last month" is the calendar month before
// now's.
func Summarize(accounts []*models.AssetAccount, records []*models.CashflowRecord, goals []*models.Goal, now time.Time) (string, error) {
	summary := metrics.Summarize(accounts)
	cashflow := metrics.MonthlyCashflow(records, metrics.PrevMonth(now))

	digest := financialSummary{
		TotalAssets:      fmt.Sprintf("%.0f", summary.Total),
		LastMonthIncome:  fmt.Sprintf("%.0f", cashflow.Income),
		LastMonthExpense: fmt.Sprintf("%.0f", cashflow.Expense),
		Goals:            make([]goalSummary, 0, len(goals)),
	}
	for _, g := range goals {
		digest.Goals = append(digest.Goals, goalSummary{
			Name:     g.Name,
			Progress: fmt.Sprintf("%.1f%%", g.Progress()),
		})
	}

	b, err := json.Marshal(digest)
	if err != nil {
		return "", fmt.Errorf("marshaling financial summary: %w", err)
	}
	return string(b), nil
}

// systemInstruction builds the assistant persona prompt around the data
// digest.
func systemInstruction(financialContext string) string {
	return "You are a helpful and insightful personal finance assistant for the 'Personal Finance Navigator' app. " +
		"Your name is 'Navi'. You must respond in Traditional Chinese (繁體中文). " +
		"Analyze the user's financial data to provide personalized advice, answer questions, and help with goals. " +
		"Be encouraging, clear, and format your responses with markdown for better readability. " +
		"Here is the user's data summary: \n" + financialContext
}

// Chat answers one user message. Model failures degrade to a fixed apology
// instead of an error; the chat endpoint never 500s over an upstream
// hiccup.
func (s *Service) Chat(ctx context.Context, message, financialContext string) string {
	if !s.client.Configured() {
		return ReplyNoAPIKey
	}

	reply, err := s.client.GenerateContent(ctx, systemInstruction(financialContext), message)
	if err != nil {
		log.Printf("AI assistant error: %v", err)
		return ReplyFailure
	}
	return reply
}
