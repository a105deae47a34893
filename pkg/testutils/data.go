//go:build testutils

package testutils

import "github.com/mentormatch/mentormatch/pkg/models"

// TestStudents is a small fixed roster for store tests. Profile tokens
// overlap the TestMentors research areas so keyword matching is exercised.
var TestStudents = []models.CreateStudentRequest{
	{
		StudentID: "s-alice",
		FullName:  "Alice Zhang",
		Email:     "alice@example.edu",
		Skills:    "python, ml, statistics",
		Interests: "nlp, computer vision",
	},
	{
		StudentID: "s-bob",
		FullName:  "Bob Okafor",
		Email:     "bob@example.edu",
		Skills:    "go, linux",
		Interests: "distributed systems, databases",
	},
	{
		StudentID: "s-carol",
		FullName:  "Carol Reyes",
		Email:     "carol@example.edu",
		Skills:    "c++, signal processing",
		Interests: "robotics",
	},
}

var TestMentors = []models.CreateMentorRequest{
	{
		MentorID:      "m-ada",
		FullName:      "Ada Hoffman",
		Email:         "ada@example.edu",
		Department:    "Computer Science",
		ResearchAreas: "Machine Learning, NLP",
	},
	{
		MentorID:      "m-grace",
		FullName:      "Grace Ito",
		Email:         "grace@example.edu",
		Department:    "Computer Science",
		ResearchAreas: "Distributed Systems, Databases",
	},
	{
		MentorID:      "m-alan",
		FullName:      "Alan Mbeki",
		Email:         "alan@example.edu",
		Department:    "Electrical Engineering",
		ResearchAreas: "Robotics, Computer Vision",
	},
}
