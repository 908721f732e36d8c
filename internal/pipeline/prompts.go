package pipeline

import (
	"bytes"
	"fmt"
	"text/template"
)

// menuAnalysisPrompt is sent once per menu image, with the image bytes
// attached inline.
const menuAnalysisPrompt = "Please analyze this menu image and return the items, " +
	"descriptions (if available), and prices in plain text. Be as thorough as " +
	"possible, and be sure not to skip over any details."

// questionsPromptTemplate embeds the full menu digest and asks for a
// question set keyed by ordinal, with candidate answers per question.
var questionsPromptTemplate = template.Must(template.New("questions").Parse(`
Given the following menu analysis, create a set of insightful questions to ask a patron who is undecided about what to order. These questions should help uncover their preferences in terms of taste, dietary restrictions, mood, or any other relevant dining considerations.

Format the output as a JSON object where each key is a question number, and the value is an object containing the 'question' and a list of potential 'answers' the patron might give:

{{.MenuText}}

Ensure the questions are diverse, covering various aspects like flavor preference, meal type, dietary needs, and adventurousness in trying new dishes.
Here's an example of how the JSON should look:

{
    "1": {
        "question": "What type of meal are you in the mood for?",
        "answers": ["Something light", "A hearty meal", "Just a snack"]
    },
    "2": {
        "question": "Do you have any dietary restrictions?",
        "answers": ["Vegetarian", "Vegan", "Gluten-free", "None"]
    }
}
`))

// recommendationsPromptTemplate embeds the digest and the patron's answers
// and asks for exactly three dish recommendations with match rationale.
var recommendationsPromptTemplate = template.Must(template.New("recommendations").Parse(`
Based on the menu analysis:

{{.MenuText}}

And considering the user preferences:

{{.Preferences}}

Please recommend 3 dishes that best match these preferences. If there's no perfect match for some preferences, suggest the closest alternatives or explain why certain preferences can't be fully met.

Structure your response in JSON format as follows:

{
    "recommendations": [
        {
            "dish_name": "",
            "match_reason": "",
            "alternatives_if_not_exact": ""
        },
        {
            "dish_name": "",
            "match_reason": "",
            "alternatives_if_not_exact": ""
        },
        {
            "dish_name": "",
            "match_reason": "",
            "alternatives_if_not_exact": ""
        }
    ],
    "notes": ""
}
`))

// questionsPrompt renders the question generation prompt for a digest.
func questionsPrompt(menuText string) (string, error) {
	var buf bytes.Buffer
	data := struct{ MenuText string }{MenuText: menuText}
	if err := questionsPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render questions prompt: %w", err)
	}
	return buf.String(), nil
}

// recommendationsPrompt renders the recommendation prompt for a digest and
// the serialized user preferences.
func recommendationsPrompt(menuText, preferencesJSON string) (string, error) {
	var buf bytes.Buffer
	data := struct{ MenuText, Preferences string }{MenuText: menuText, Preferences: preferencesJSON}
	if err := recommendationsPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render recommendations prompt: %w", err)
	}
	return buf.String(), nil
}
