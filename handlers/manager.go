package handlers

import (
	"context"
	"strings"

	"github.com/hupe1980/opscouncil/intent"
	"github.com/hupe1980/opscouncil/logging"
	"github.com/hupe1980/opscouncil/respond"
	"github.com/hupe1980/opscouncil/router"
)

// managerLineCap bounds manager answers to keep them chat-friendly.
const managerLineCap = 4

// managerInstruction frames the designated backend as a management
// assistant for Israeli port operations. Answers must be Hebrew and short.
const managerInstruction = `אתה עוזר AI מיוחד לשאלות מנהליות עבור נמלים ותפעול ימי. תפקידך לענות על שאלות מנהליות, תפעוליות, רגולטוריות וניהוליות הקשורות לנמלים בישראל.

הוראות חשובות:
- ענה בעברית בלבד
- שמור על תשובות קצרות וממוקדות - מקסימום 4 שורות
- התחל עם תשובה ישירה לשאלה
- השתמש בשפה מקצועית וברורה
- אם השאלה מתייחסת למסמכים ספציפיים או נהלים, ציין זאת
- תמיד תן תשובה מועילה, גם אם אין לך מידע ספציפי - השתמש בידע כללי על תפעול נמלים

התשובה חייבת להיות קצרה וממוקדת - מקסימום 4 שורות.`

// managerQuestion asks one designated backend and trims the answer to the
// line cap. Backend failure degrades to a Hebrew apology rather than an
// error so the user always gets a reply.
func managerQuestion(gateway Gateway, backendID string, logger logging.Logger) router.HandlerFunc {
	return func(ctx context.Context, req router.Request) (string, error) {
		if gateway == nil || backendID == "" {
			return respond.Fallback(), nil
		}
		question, err := stringParam(req.Command, intent.ParamQuestion)
		if err != nil {
			question = req.Text
		}

		answer, err := gateway.Submit(ctx, backendID, managerInstruction+"\n\nשאלה: "+question)
		if err != nil {
			logger.Warn("manager backend failed", "backend", backendID, "error", err.Error())
			return "מצטער, אירעה שגיאה בקבלת תשובה מהמערכת. אנא נסה שוב מאוחר יותר.", nil
		}
		answer = capLines(answer, managerLineCap)
		if answer == "" {
			return "מצטער, לא קיבלתי תשובה מהמערכת. אנא נסה שוב.", nil
		}
		return answer, nil
	}
}

// capLines keeps the first limit non-empty lines of text.
func capLines(text string, limit int) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
		if len(kept) == limit {
			break
		}
	}
	return strings.Join(kept, "\n")
}
