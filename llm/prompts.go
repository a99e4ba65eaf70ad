package llm

// SystemPrompt frames every document conversation.
const SystemPrompt = "You are a careful, concise assistant analyzing a PDF. " +
	"Use the provided text excerpt and extracted visuals (with page numbers) to ground your answers. " +
	"Cite page numbers when referencing specific content. Avoid long verbatim quotes."

// DefaultQuestions are asked when the caller supplies none.
var DefaultQuestions = []string{
	"Provide a concise description of the PDF. Cover: purpose, structure, main topics/sections, and notable figures/tables/findings.",
	"Identify the first question that is asked in the PDF. Quote the wording exactly if possible and provide the page number. If no explicit question is present, state that clearly.",
	"Identify the first image included in the PDF. Describe it if possible, and relate to the discussion in the text. If no image is present, state that clearly",
}

// Temperature used by the providers.
const Temperature = 0.2
