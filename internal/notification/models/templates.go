package models

import "fmt"

func JobPostedTitle(jobTitle string) string {
	return "New job: " + jobTitle
}

func JobPostedMessage(jobTitle, department string) string {
	return fmt.Sprintf("A new %s position is open in %s.", jobTitle, department)
}

const ApplicationReceivedTitle = "Application received"

func ApplicationReceivedMessage(jobTitle string) string {
	return fmt.Sprintf("Your application for %s has been received.", jobTitle)
}

const StatusChangedTitle = "Application status updated"

func StatusChangedMessage(jobTitle, status string) string {
	return fmt.Sprintf("Your application for %s is now %s.", jobTitle, status)
}
