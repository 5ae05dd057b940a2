package ingest

import (
	"fmt"
	"strings"
)

const (
	MsgProcessingFailed = "An error occurred while processing your resume. Please try again."
	MsgStartFailed      = "An error occurred. Please try again later."
	MsgUploadHint       = "Please upload your resume as a PDF, DOCX or TXT document."
	MsgNoProfile        = "You don't have a profile yet. Please upload your resume."
	MsgNoUploads        = "You haven't uploaded any resumes yet."

	historyLimit = 5
)

func WelcomeMessage(name string) string {
	return fmt.Sprintf("Welcome %s! Please upload your resume.", name)
}

func SuccessMessage(url string) string {
	return "Your resume has been processed and saved. You can view your profile here: " + url
}

func ProfileLinkMessage(url string) string {
	return "Your profile: " + url
}

func HistoryMessage(recs []UploadRecord) string {
	if len(recs) == 0 {
		return MsgNoUploads
	}
	var b strings.Builder
	b.WriteString("Your recent uploads:")
	for _, r := range recs {
		fmt.Fprintf(&b, "\n%s  %s  %s", r.CreatedAt.Format("2006-01-02 15:04"), r.FileName, r.Status)
		if r.Status == UploadStatusFailed {
			fmt.Fprintf(&b, " (at %s)", r.Stage)
		}
	}
	return b.String()
}
