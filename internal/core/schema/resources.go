package schema

// Resource names as they appear in URLs.
const (
	Faculty        = "faculty"
	Courses        = "courses"
	Events         = "events"
	Gallery        = "gallery"
	Achievements   = "achievements"
	StudyMaterials = "study-materials"
	News           = "news"
)

// Builtin returns the department website resources.
func Builtin() []ResourceDefinition {
	return []ResourceDefinition{
		facultyDefinition(),
		courseDefinition(),
		eventDefinition(),
		galleryDefinition(),
		achievementDefinition(),
		studyMaterialDefinition(),
		newsDefinition(),
	}
}

func text(name string) FieldSpec { return FieldSpec{Name: name, Type: TypeString} }

func required(name, label string) FieldSpec {
	return FieldSpec{Name: name, Type: TypeString, Label: label, Required: true}
}

func tags() FieldSpec { return FieldSpec{Name: "tags", Type: TypeStringArray} }

func flag(name string, def bool) FieldSpec {
	return FieldSpec{Name: name, Type: TypeBoolean, Default: def}
}

func facultyDefinition() ResourceDefinition {
	return ResourceDefinition{
		Name:  Faculty,
		Label: "Faculty",
		Fields: []FieldSpec{
			required("name", "Name"),
			{Name: "email", Type: TypeString, Label: "Email", Required: true, Unique: "email", Case: CaseLower},
			text("phone"),
			{Name: "designation", Type: TypeString, Label: "Designation", Required: true, Enum: []string{
				"Professor", "Associate Professor", "Assistant Professor",
				"Lecturer", "Visiting Professor", "Adjunct Professor",
			}},
			{Name: "department", Type: TypeString, Default: "Computer Science"},
			required("specialization", "Specialization"),
			text("qualification"),
			text("experience"),
			text("imageUrl"),
			text("officeLocation"),
			text("officeHours"),
			text("researchInterests"),
			text("publications"),
			text("achievements"),
			text("bio"),
			{Name: "socialLinks", Type: TypeObject},
		},
		ActiveOnlyByDefault: true,
		DefaultSort:         []SortKey{Desc(FieldCreatedAt)},
		SearchKeys: map[string][]string{
			"search": {"name", "specialization", "email"},
		},
		HardDelete: true,
	}
}

func courseDefinition() ResourceDefinition {
	return ResourceDefinition{
		Name:  Courses,
		Label: "Course",
		Fields: []FieldSpec{
			{Name: "courseCode", Type: TypeString, Label: "Course code", Required: true, Unique: "courseCode", Case: CaseUpper},
			required("title", "Course title"),
			required("description", "Course description"),
			{Name: "credits", Type: TypeNumber, Label: "Credits", Required: true, Min: ptr(1), Max: ptr(6)},
			{Name: "level", Type: TypeString, Label: "Level", Required: true, Default: "Undergraduate",
				Enum: []string{"Undergraduate", "Graduate", "Doctoral"}},
			required("semester", "Semester"),
			text("instructor"),
			text("schedule"),
			text("room"),
			text("prerequisites"),
			text("syllabus"),
			{Name: "maxStudents", Type: TypeNumber, Label: "Max students", Min: ptr(1)},
			{Name: "enrolledStudents", Type: TypeNumber, Label: "Enrolled students", Default: float64(0)},
		},
		ActiveOnlyByDefault: true,
		DefaultSort:         []SortKey{Asc("courseCode")},
		SearchKeys: map[string][]string{
			"search": {"courseCode", "title", "instructor"},
		},
	}
}

func eventDefinition() ResourceDefinition {
	return ResourceDefinition{
		Name:  Events,
		Label: "Event",
		Fields: []FieldSpec{
			required("title", "Title"),
			required("description", "Description"),
			{Name: "eventType", Type: TypeString, Label: "Event type", Required: true, Default: "Other", Enum: []string{
				"Workshop", "Seminar", "Conference", "Hackathon", "Competition",
				"Guest Lecture", "Cultural Event", "Sports", "Technical Event",
				"Announcement", "Holiday", "Exam", "Other",
			}},
			{Name: "eventDate", Type: TypeDate, Label: "Event date", Required: true},
			text("startTime"),
			text("endTime"),
			text("venue"),
			{Name: "organizer", Type: TypeString, Default: "CS Department"},
			text("contactPerson"),
			{Name: "contactEmail", Type: TypeString, Case: CaseLower},
			text("contactPhone"),
			text("registrationLink"),
			text("imageUrl"),
			{Name: "maxParticipants", Type: TypeNumber, Label: "Max participants"},
			flag("isRegistrationOpen", true),
			flag("isFeatured", false),
			{Name: "status", Type: TypeString, Label: "Status", Default: StatusUpcoming,
				Enum: []string{StatusUpcoming, "Ongoing", "Completed", "Cancelled"}},
			tags(),
		},
		ActiveOnlyByDefault: true,
		DefaultSort:         []SortKey{Asc("eventDate"), Desc(FieldCreatedAt)},
		SearchKeys: map[string][]string{
			"search": {"title", "description", "venue", "tags"},
		},
		UpcomingField: "eventDate",
		StatusField:   "status",
		Featured: &View{
			Exact: map[string]any{"isFeatured": true},
			Sort:  []SortKey{Asc("eventDate")},
			Limit: 5,
		},
		Upcoming: &View{
			Sort:  []SortKey{Asc("eventDate")},
			Limit: 10,
		},
	}
}

func galleryDefinition() ResourceDefinition {
	return ResourceDefinition{
		Name:  Gallery,
		Label: "Image",
		Fields: []FieldSpec{
			required("title", "Title"),
			text("description"),
			required("imageUrl", "Image URL"),
			{Name: "category", Type: TypeString, Label: "Category", Required: true, Default: "Other", Enum: []string{
				"Events", "Workshops", "Seminars", "Hackathons", "Cultural", "Sports",
				"Achievements", "Campus Life", "Labs", "Infrastructure", "Faculty",
				"Students", "Convocation", "Competitions", "Other",
			}},
			{Name: "eventDate", Type: TypeDate, Label: "Event date"},
			tags(),
			{Name: "uploadedBy", Type: TypeString, Default: "Admin"},
			flag("isFeatured", false),
			{Name: "views", Type: TypeNumber, Counter: true},
			{Name: "likes", Type: TypeNumber, Counter: true},
		},
		ActiveOnlyByDefault: true,
		DefaultSort:         []SortKey{Desc(FieldCreatedAt)},
		SearchKeys: map[string][]string{
			"search": {"title", "description", "tags"},
		},
		Featured: &View{
			Exact: map[string]any{"isFeatured": true},
			Sort:  []SortKey{Desc(FieldCreatedAt)},
			Limit: 10,
		},
		CategoryField: "category",
		CategorySort:  []SortKey{Desc(FieldCreatedAt)},
		ViewCounter:   "views",
		LikeCounter:   "likes",
	}
}

func achievementDefinition() ResourceDefinition {
	return ResourceDefinition{
		Name:  Achievements,
		Label: "Achievement",
		Fields: []FieldSpec{
			required("title", "Title"),
			required("description", "Description"),
			{Name: "category", Type: TypeString, Label: "Category", Required: true, Default: "Other", Enum: []string{
				"Academic", "Research", "Sports", "Cultural", "Technical", "Competition",
				"Award", "Publication", "Project", "Hackathon", "Certification",
				"Innovation", "Other",
			}},
			required("achievedBy", "Achiever name"),
			{Name: "achieverType", Type: TypeString, Label: "Achiever type", Default: "Student",
				Enum: []string{"Student", "Faculty", "Team", "Department"}},
			{Name: "date", Type: TypeDate, Label: "Achievement date", Required: true},
			text("year"),
			text("semester"),
			text("organizer"),
			text("venue"),
			text("position"),
			text("prize"),
			text("imageUrl"),
			text("certificateUrl"),
			text("proofUrl"),
			tags(),
			flag("isFeatured", false),
		},
		ActiveOnlyByDefault: true,
		DefaultSort:         []SortKey{Desc("date"), Desc(FieldCreatedAt)},
		SearchKeys: map[string][]string{
			"search": {"title", "description", "achievedBy", "tags"},
		},
		Featured: &View{
			Exact: map[string]any{"isFeatured": true},
			Sort:  []SortKey{Desc("date")},
			Limit: 10,
		},
		CategoryField: "category",
		CategorySort:  []SortKey{Desc("date")},
	}
}

func studyMaterialDefinition() ResourceDefinition {
	return ResourceDefinition{
		Name:  StudyMaterials,
		Label: "Study material",
		Fields: []FieldSpec{
			required("title", "Title"),
			required("subject", "Subject"),
			{Name: "year", Type: TypeString, Label: "Year", Required: true,
				Enum: []string{"1st Year", "2nd Year", "3rd Year"}},
			{Name: "semester", Type: TypeString, Label: "Semester", Required: true, Enum: []string{
				"Semester 1", "Semester 2", "Semester 3",
				"Semester 4", "Semester 5", "Semester 6",
			}},
			text("description"),
			required("fileUrl", "File URL"),
			{Name: "fileType", Type: TypeString, Label: "File type", Default: "PDF",
				Enum: []string{"PDF", "DOC", "PPT", "ZIP", "Other"}},
			{Name: "uploadedBy", Type: TypeString, Default: "Admin"},
			{Name: "category", Type: TypeString, Label: "Category", Default: "Notes", Enum: []string{
				"Notes", "Question Papers", "Syllabus", "Assignments",
				"Reference Books", "Lab Manual", "Other",
			}},
		},
		ActiveOnlyByDefault: true,
		DefaultSort:         []SortKey{Asc("year"), Asc("semester"), Asc("subject"), Desc(FieldCreatedAt)},
		SearchKeys: map[string][]string{
			"search": {"title", "subject", "description"},
		},
		GroupBy:   []string{"year", "semester"},
		GroupSort: []SortKey{Asc("year"), Asc("semester"), Asc("subject")},
	}
}

func newsDefinition() ResourceDefinition {
	return ResourceDefinition{
		Name:  News,
		Label: "News",
		Fields: []FieldSpec{
			required("title", "Title"),
			required("content", "Content"),
			required("excerpt", "Excerpt"),
			required("author", "Author"),
			{Name: "category", Type: TypeString, Label: "Category", Default: "Announcement",
				Enum: []string{"Achievement", "Research", "Event", "Announcement", "Publication"}},
			required("imageUrl", "Image URL"),
			{Name: "publishDate", Type: TypeDate, Label: "Publish date", DefaultNow: true},
			tags(),
			flag("isPublished", true),
			{Name: "views", Type: TypeNumber, Counter: true},
		},
		ActiveOnlyByDefault: true,
		DefaultFilters:      map[string]any{"isPublished": true},
		DefaultSort:         []SortKey{Desc("publishDate"), Desc(FieldCreatedAt)},
		SearchKeys: map[string][]string{
			"search": {"title", "excerpt", "content"},
		},
		CategoryField: "category",
		CategorySort:  []SortKey{Desc("publishDate")},
		HardDelete:    true,
		ViewCounter:   "views",
	}
}
