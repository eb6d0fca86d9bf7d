package council

import (
	"fmt"
	"strings"
)

// PromptVersion identifies the prompt layout. Backends are sensitive to
// prompt structure, so any change to section order, the sentinel or the
// instruction blocks is an interface change and must bump this constant.
const PromptVersion = 2

// historyCharBudget caps each prior bot response embedded in a prompt.
const historyCharBudget = 200

// answerInstructions is the fixed instruction block appended to every
// round-1 prompt. Output language, conciseness limits and the numeric/date
// interpretation rules for the port-operations domain live here.
const answerInstructions = `Instructions:
- Answer the question based on the context provided above (metrics data)
- For questions about operational procedures, regulations or job requirements, use the knowledge base excerpts when available, otherwise answer from general knowledge about port operations
- For questions about data (containers, vehicles, dates): use only the metrics data provided
- Always provide a clear, helpful answer in Hebrew

WRITING STYLE - Keep your answer concise and clear:
- Maximum 3-4 short paragraphs
- Start with a direct, clear answer
- Use bullet points only for key information (max 3-4 bullets)
- Use simple, professional language

1. DATE INTERPRETATION:
   - Extract month names and years from the question, even with typos
   - Hebrew months: ינואר=01, פברואר=02, מרץ=03, אפריל=04, מאי=05, יוני=06, יולי=07, אוגוסט=08, ספטמבר=09, אוקטובר=10, נובמבר=11, דצמבר=12
   - Common typos: 'פבאור' or 'פבואר' = פברואר (February)
   - Years: '25' = 2025, '24' = 2024, etc.

2. DATA FORMAT:
   - Dates in 'containers.daily_counts' are in YYYYMMDD format (e.g., '20250215' = Feb 15, 2025)
   - To find February 2025, look for keys starting with '202502'

3. CALCULATION:
   - For monthly queries: sum ALL values in 'containers.daily_counts' where the key starts with YYYYMM
   - For date range queries: sum values for all dates in that range

4. RESPONSE FORMAT:
   - Always provide the exact number found
   - Answer in Hebrew
   - If data is not found, explain what you searched for`

// buildAnswerPrompt assembles the deterministic round-1 prompt. Section
// order is fixed: metrics, prior turns (oldest first), knowledge excerpts,
// the literal question, then the instruction block.
func buildAnswerPrompt(question string, bundle ContextBundle) string {
	var parts []string

	metrics := "{}"
	if len(bundle.Metrics) > 0 {
		metrics = string(bundle.Metrics)
	}
	parts = append(parts, "Contextual data (JSON):", metrics)

	if len(bundle.History) > 0 {
		parts = append(parts, "Previous conversation context:")
		for i, turn := range bundle.History {
			if turn.UserText == "" && turn.ResponseText == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("[Previous exchange %d]:", i+1))
			if turn.UserText != "" {
				parts = append(parts, "User: "+turn.UserText)
			}
			if turn.ResponseText != "" {
				parts = append(parts, "Bot: "+truncate(turn.ResponseText, historyCharBudget))
			}
		}
		parts = append(parts, "---")
	}

	if len(bundle.Knowledge) > 0 {
		parts = append(parts, "Relevant knowledge base excerpts:")
		for i, excerpt := range bundle.Knowledge {
			text := strings.TrimSpace(excerpt.Text)
			if text == "" {
				continue
			}
			title := excerpt.Title
			if title == "" {
				title = fmt.Sprintf("Section %d", i+1)
			}
			source := excerpt.Source
			if source == "" {
				source = "document"
			}
			id := excerpt.ID
			if id == "" {
				id = fmt.Sprintf("%d", i+1)
			}
			parts = append(parts, fmt.Sprintf("[%d] %s (%s, id=%s):\n%s", i+1, title, source, id, text))
		}
	} else {
		parts = append(parts,
			"Note: No specific knowledge base excerpts were found for this question.",
			"You should use your general knowledge about port operations, maritime regulations, and operational procedures to answer.")
	}

	parts = append(parts, "Question:", question, answerInstructions)
	return strings.Join(parts, "\n\n")
}

// buildRankingPrompt assembles the round-2 peer-evaluation prompt. The
// answers appear only under their anonymized labels; backend identifiers
// must never reach a ranker.
func buildRankingPrompt(question, answerPrompt string, answers []ModelAnswer, book *labelBook) string {
	var labeled strings.Builder
	for _, a := range answers {
		fmt.Fprintf(&labeled, "%s:\n%s\n\n", book.label(a.BackendID), a.Text)
	}

	return fmt.Sprintf(`You are evaluating different responses to the following question:

Question: %s

Original Context:
%s

Here are the responses from different models (anonymized):

%s
Your task:
1. First, evaluate each response individually. For each response, explain what it does well and what it does poorly.
2. Then, at the very end of your response, provide a final ranking.

IMPORTANT: Your final ranking MUST be formatted EXACTLY as follows:
- Start with the line "%s" (all caps, with colon)
- Then list the responses from best to worst as a numbered list
- Each line should be: number, period, space, then ONLY the response label (e.g., "1. Response A")
- Do not add any other text or explanations in the ranking section

Now provide your evaluation and ranking:`, question, answerPrompt, labeled.String(), rankingSentinel)
}

// buildSynthesisPrompt assembles the round-3 prompt for the aggregator. At
// this point anonymization is lifted: every answer and ranking is attributed
// to its source backend.
func buildSynthesisPrompt(question, answerPrompt string, answers []ModelAnswer, rankings []Ranking) string {
	var stage1 strings.Builder
	for _, a := range answers {
		fmt.Fprintf(&stage1, "Model: %s\nResponse: %s\n\n", a.BackendID, a.Text)
	}
	var stage2 strings.Builder
	for _, r := range rankings {
		fmt.Fprintf(&stage2, "Model: %s\nRanking: %s\n\n", r.BackendID, r.Raw)
	}

	return fmt.Sprintf(`You are the Chairman of a model council. Multiple AI models have provided responses to a user's question, and then ranked each other's responses.

Original Question: %s

Original Context:
%s

STAGE 1 - Individual Responses:
%s
STAGE 2 - Peer Rankings:
%s
Your task as Chairman is to synthesize all of this information into a single, comprehensive, accurate answer to the user's original question. Consider:
- The individual responses and their insights
- The peer rankings and what they reveal about response quality
- Any patterns of agreement or disagreement

Provide a clear, well-reasoned final answer in Hebrew that represents the council's collective wisdom:`, question, answerPrompt, stage1.String(), stage2.String())
}

// truncate counts runes, not bytes, so Hebrew text is never cut
// mid-character.
func truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "..."
}
