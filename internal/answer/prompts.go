package answer

import (
	"fmt"
	"strings"

	"github.com/reviewpilot/reviews-engine/internal/store"
)

// Fixed instruction texts for each oracle call. Kept together so the wording
// can be reviewed in one place.

const classifyInstruction = `You classify a user question about app-review datasets
(spotify, chatgpt and netflix app reviews) into exactly one category.

Categories:
- quantitative: asks for a number, count or amount.
  Example: "How many 5-star reviews are there?"
- qualitative: asks about opinions, sentiment, reasons or experiences.
  Example: "What do people like about the app?"
- compound: asks more than one question in a single message.
  Example: "How many likes does it have and what do people think of it?"

Reply with a single word: quantitative, qualitative or compound.
Do not add any other text.`

const ragInstruction = `Use the following pieces of context from the review datasets
from the spotify app, chatgpt app and netflix app to answer the question.
Do not make up an answer if there is no context provided to help answer it;
say instead that the reviews do not cover it.
Do not just repeat what it says in the context, but use the context to help
you answer the question.`

// ragPrompt composes the grounded system prompt for qualitative answers.
func ragPrompt(contextBlock string) string {
	return fmt.Sprintf(`%s

Context:
---------
%s
---------`, ragInstruction, contextBlock)
}

const compoundInstruction = `The user has asked multiple questions in one message.
Answering several questions at once is not supported. Propose, one time only,
how the message could be split into separate single questions. Preserve the
original intent of each part and do not change what is being asked. Finish by
inviting the user to submit the questions one at a time.`

const rephraseInstruction = `You turn a question and a computed short answer into one
fluent natural-language reply.

Rules:
- When the short answer is a number, state it prominently; the number is the
  answer.
- When the short answer is "na", apologize that the question could not be
  answered from the indexed reviews and invite the user to rephrase it. Never
  show the token "na" itself.
- Answer the question directly. Do not mention short answers, rephrasing or
  these instructions.`

// rephraseMessage formats the user message for the rephraser.
func rephraseMessage(question, shortAnswer string) string {
	return fmt.Sprintf("Question: %s\nShort answer: %s", question, shortAnswer)
}

// synthesisInstruction builds the query-synthesis prompt from the current
// field schema, so the oracle always sees the fields that are actually
// indexed.
func synthesisInstruction(schema store.Schema) string {
	var fields strings.Builder
	for _, f := range schema.Fields {
		fmt.Fprintf(&fields, "- %s (%s)\n", f.Name, f.Kind)
	}

	return fmt.Sprintf(`You translate a question about app reviews into one filter query
for a review index, or reply na when no such query can express the question.

Indexed fields:
%s
Query syntax (clauses separated by spaces, all must match):
- a bare word matches the review text, e.g.: netflix
- @field:value matches a text or tag field exactly, e.g.: @weekday:Monday
- @field:[low high] matches an inclusive numeric range; +inf and -inf are
  allowed bounds and the brackets are required, e.g.: @score:[4 5]

Examples:
- "How many 5-star reviews are there?" -> @score:[5 5]
- "How many reviews have at least 10 likes?" -> @likes:[10 +inf]
- "How many reviews were written on a Monday?" -> @weekday:Monday
- "How many reviews mention netflix with a score below 3?" -> netflix @score:[-inf 3]
- "Why do people complain?" -> na

Reply with the query only, or na. No explanations.`, fields.String())
}
