package explain

const explanationPrompt = `
You are a Senior Software Engineer specializing in teaching.
Analyze the following code block, which is part of a larger file, titled: "%s".

1.  **Summarize** the block's *intent* and *functionality*.
2.  **Explain** the underlying technical concepts as if teaching an unknowledgeable person (simple terms, high-level analogies).
3.  **Maintain** a professional, senior-level language and tone throughout the explanation.
4.  **Do not** include the code itself in your explanation.

CODE BLOCK:
---
%s
---
`

const failureNotice = "AUTOMATIC ANALYSIS FAILED: Ollama connection error. Please check if Ollama is running and '%s' is installed."
