package service

import (
	"fmt"

	"github.com/kokonnect/konnect-back-sub000/model"
)

// Prompt identifiers recorded in per-stage audit logs.
const (
	PromptIDOCR         = "ocr-vision-v1"
	PromptIDClassify    = "classify-notice-v1"
	PromptIDExtract     = "extract-unified-v1"
	PromptIDExpressions = "difficult-expressions-v1"
	PromptIDSimplify    = "simplify-korean-v1"
	PromptIDTranslate   = "translate-v1"
	PromptIDSummarize   = "summarize-v1"
)

// Per-stage generation parameters. Structured stages run cold; the
// language-production stages get a little room.
const (
	ocrTemperature         = 0.0
	ocrMaxTokens           = 8192
	classifyTemperature    = 0.1
	classifyMaxTokens      = 1024
	extractTemperature     = 0.1
	extractMaxTokens       = 4096
	expressionsTemperature = 0.3
	expressionsMaxTokens   = 2048
	simplifyTemperature    = 0.3
	simplifyMaxTokens      = 2048
	translateTemperature   = 0.2
	translateMaxTokens     = 2048
	summarizeTemperature   = 0.3
	summarizeMaxTokens     = 1024
)

func ocrPrompt() string {
	return `You are reading a scanned Korean school document (notice, newsletter or letter to parents).
Transcribe ALL text exactly as written, preserving line breaks and reading order.
Include dates, times, amounts and phone numbers exactly as printed.
Output ONLY the transcribed text. No commentary, no markdown formatting, no code fences.
If the image contains no readable text, output nothing.`
}

func classifyPrompt(text string) string {
	return fmt.Sprintf(`Classify the following Korean school notice into exactly one category.

Categories:
- SCHEDULE: calendar-driven notices (school events calendar, vacation dates, exam timetable)
- PENALTY: disciplinary or penalty-related notices (demerits, fines, violations)
- EVENT: one-off participation events (field trips, festivals, parent meetings)
- NOTICE: general announcements and anything that fits no other category

Respond with a single JSON object using exactly these keys:
{"document_type": "SCHEDULE|PENALTY|EVENT|NOTICE", "confidence": 0.0, "keywords": ["..."], "reasoning": "one short sentence"}

Rules: confidence is between 0 and 1. keywords are up to 5 short Korean phrases copied from the document.
Output ONLY the JSON object. No markdown, no code fences, no extra text.

Document:
%s`, text)
}

func extractPrompt(text string) string {
	return fmt.Sprintf(`Extract calendar events and structured facts from the following Korean school notice.

Respond with a single JSON object using exactly these keys:
{
  "schedules": [
    {"title": "...", "memo": "...", "start_date": "2025-07-23T00:00:00", "end_date": "2025-08-17T00:00:00", "is_all_day": true}
  ],
  "additional_info": {}
}

Rules:
- Dates use the layout YYYY-MM-DDTHH:MM:SS with no timezone. When the notice gives only a date, use 00:00:00 and set is_all_day to true.
- When an end date is absent, repeat the start date.
- title is short Korean text from the notice; memo carries any detail worth keeping (may be empty).
- additional_info holds other structured facts you find (fees, deadlines, items to bring, contacts) as key-value pairs; leave it empty when there are none.
- An empty schedules array is valid when the notice has no dated items.
Output ONLY the JSON object. No markdown, no code fences, no extra text.

Document:
%s`, text)
}

func expressionsPrompt(text string, lang model.TargetLanguage) string {
	return fmt.Sprintf(`From the following Korean school notice, pick up to 10 expressions that a non-native Korean speaker would find hard: administrative jargon, school-specific terms, sino-Korean compounds, abbreviations.

For each, explain the meaning plainly in %s.

Respond with a single JSON array:
[{"original": "가정통신문", "explanation": "..."}]

Rules: at most 10 entries, ordered by how likely the expression is to block understanding. explanation is written in %s. Do not pick ordinary everyday words.
Output ONLY the JSON array. No markdown, no code fences, no extra text.

Document:
%s`, lang.Name, lang.Name, text)
}

func simplifyPrompt(text string, simpleMode bool) string {
	extra := ""
	if simpleMode {
		extra = "\nUse especially short sentences and only common everyday vocabulary, as if writing for an elementary school student."
	}
	return fmt.Sprintf(`Rewrite the following Korean school notice in plain, easy Korean.

Rules:
- Keep every fact: dates, times, amounts, items to prepare, contact details.
- Replace administrative jargon with everyday words.
- Short sentences, one idea each.
- Stay in Korean.%s
Output ONLY the rewritten text. No markdown formatting, no headers, no code fences.

Document:
%s`, extra, text)
}

func translatePrompt(text string, lang model.TargetLanguage) string {
	return fmt.Sprintf(`Translate the following simplified Korean school notice into %s.

Rules:
- Natural, plain %s aimed at a parent.
- Keep all dates, times, amounts and names exactly.
- Keep proper nouns (school name, teacher name) in Korean with a transliteration in parentheses on first mention.
Output ONLY the translation. No markdown formatting, no commentary.

Text:
%s`, lang.Name, lang.Name, text)
}

func summarizePrompt(text string, lang model.TargetLanguage) string {
	return fmt.Sprintf(`Summarize the following simplified Korean school notice in %s.

Rules:
- 3 to 5 sentences.
- Lead with what the parent must do and by when, if anything.
- Plain language, no markdown formatting, no lists.
Output ONLY the summary.

Text:
%s`, lang.Name, text)
}
