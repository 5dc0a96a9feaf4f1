package llm

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout renders dates as "January 05, 2025".
const DateLayout = "January 02, 2006"

const promptDelimiter = "--------------------"

// BuildCoverLetterPrompt renders the cover letter instructions for one
// résumé and job description. The address line is requested only when
// address is non-empty. date is the letter date.
//
//nolint:funlen // Prompt template
func BuildCoverLetterPrompt(resumeText, jobDescription, address string, date time.Time) (prompt string) {
	headerItems := []string{
		"Candidate's Full Name (formatted as bold text, with each word capitalized, on its own line).",
		"Candidate's Email (formatted as: Email: [email_address], formatted as bold text, on its own line).",
		"Candidate's Phone Number (formatted as: Phone: [phone_number], formatted as bold text, on its own line).",
		"new line",
		fmt.Sprintf("Date (formatted as: Date: %s, on its own line).", date.Format(DateLayout)),
		"new line",
		"Company Name (extracted from the job description and written clearly on its own line).",
	}

	address = strings.TrimSpace(address)
	if address != "" {
		headerItems = append(headerItems, fmt.Sprintf("Company Address (on its own line, exactly as: %s).", address))
	}

	headerItems = append(headerItems,
		"new line",
		`Greeting Line (choose the appropriate greeting based on the job description, e.g., "Dear Hiring Manager," or "Dear [Specific Name],").`,
	)

	var header strings.Builder
	number := 0
	for _, item := range headerItems {
		if item == "new line" {
			header.WriteString("new line\n")
			continue
		}
		number++
		header.WriteString(fmt.Sprintf("%d) %s\n", number, item))
	}

	prompt = fmt.Sprintf(`You are an experienced cover letter writer with 20 years of expertise, known for creating highly impactful and personalized cover letters. Your goal is to craft a compelling and professional cover letter that aligns with the candidate's resume, technical skills, and achievements while directly addressing the requirements and values outlined in the job description.

Memorize all the information provided in the resume and job description to create a cohesive narrative that showcases the candidate's qualifications, enthusiasm, and fit for the role. Adhere to all standard cover letter rules, formatting requirements, and professional tone guidelines.

**Header:**
%s
**Body:**
Write exactly three paragraphs separated by exactly one blank line.
1) Introduction (1 paragraph): A concise and engaging opening that highlights why the candidate is excited about the role and company. Mention the specific position and briefly touch on how their skills and experiences align with the job description.

2) Main Body (1 paragraph): Expand on key achievements, skills, and experiences from the resume that are relevant to the job description. Emphasize how the candidate's background can address the company's needs or solve specific challenges. Use metrics or quantifiable results where possible.

3) Conclusion (1 paragraph): Reiterate enthusiasm for the role, express interest in contributing to the company, and include a call to action (e.g., willingness to discuss further in an interview).

**Closing:**
- "Sincerely," on its own line.
- Candidate's Full Name (typed, on the next line).

**Total Length:** 150–250 words.

**Instructions:**
- Tailor the language and content to reflect the tone and keywords of the job description.
- Focus on relevance, clarity, and professionalism.
- Ensure seamless integration of details from the resume into the narrative.
- Return only the cover letter text.

**Job Description:**
%s
%s
%s

**Resume:**
%s
%s
%s`,
		strings.TrimRight(header.String(), "\n"),
		promptDelimiter, jobDescription, promptDelimiter,
		promptDelimiter, resumeText, promptDelimiter,
	)

	prompt = strings.TrimSpace(prompt)
	return prompt
}
