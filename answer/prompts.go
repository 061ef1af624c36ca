package answer

// DemoQuestions exercise text, table and image content of a typical report.
var DemoQuestions = []string{
	"What do you see in the images?",
	"What is the name of the company?",
	"What is the product displayed in the image?",
	"How much are the total expenses of the company?",
	"What is the ROI?",
	"How much did the company sell in 2023?",
	"And in 2022?",
}

const systemPrompt = `You are an expert assistant that answers questions based on multimodal content including text, tables, and images.

Guidelines:
- Answer questions based ONLY on the provided context
- If the context doesn't contain enough information, say so clearly
- Be specific and cite relevant details from the context
- For questions about images, refer to the image descriptions provided
- For questions about data, reference tables and numerical information when available
- Provide concise but comprehensive answers`

const humanPromptTemplate = `Context (includes text, tables, and image descriptions):
%s

Question: %s

Answer:`

const contextEntryPrefix = "Content: "
