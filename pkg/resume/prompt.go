package resume

import "fmt"

const systemPrompt = "You extract structured data from resumes. Reply with a single JSON object and nothing else: no markdown, no code fences, no commentary. Do not invent facts."

const userPromptTemplate = `Extract the following information from this resume and provide the output in the exact JSON format:

1. Work experiences: a list of job experiences, each with the fields job_title, company_name, start_date, end_date and description.
2. Skills: one flat list with every skill (programming languages, technologies and frameworks, databases, devops, testing and development tools). Do not split it into categories.

The JSON structure must strictly follow this format:

{
  "work_experiences": [
    {
      "job_title": "Example Job Title",
      "company_name": "Example Company",
      "start_date": "Start Date",
      "end_date": "End Date or 'Present'",
      "description": "Example description"
    }
  ],
  "skills": [
    "Skill 1",
    "Skill 2"
  ]
}

Resume content:
<<<
%s
>>>

Make sure all fields are present, even if the resume lacks information in some areas. If data is missing, use null, an empty list, or "Present" for the end date when appropriate. Start and end the response with {} and include nothing else that could break JSON parsing.`

func buildUserPrompt(text string) string {
	return fmt.Sprintf(userPromptTemplate, text)
}
