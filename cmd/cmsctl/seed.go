package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/pkg/apperror"
)

// demoContent is inserted through the repository, so it passes the same
// validation as API writes.
var demoContent = map[string][]map[string]any{
	schema.Faculty: {
		{
			"name": "Dr. Meera Iyer", "email": "meera.iyer@dept.example.edu",
			"designation": "Professor", "specialization": "Distributed Systems",
			"qualification": "PhD", "experience": "18 years",
		},
		{
			"name": "Arjun Rao", "email": "arjun.rao@dept.example.edu",
			"designation": "Assistant Professor", "specialization": "Machine Learning",
		},
	},
	schema.Courses: {
		{
			"courseCode": "cs101", "title": "Introduction to Programming",
			"description": "Problem solving with a first programming language.",
			"credits": 4, "semester": "Fall", "instructor": "Arjun Rao",
		},
		{
			"courseCode": "cs305", "title": "Operating Systems",
			"description": "Processes, memory, file systems and concurrency.",
			"credits": 3, "semester": "Spring", "level": "Undergraduate",
		},
	},
	schema.Events: {
		{
			"title": "Annual Hackathon", "description": "24 hours of building.",
			"eventType": "Hackathon", "eventDate": "2030-02-15", "venue": "Main Lab",
			"isFeatured": true, "tags": []any{"coding", "students"},
		},
	},
	schema.Gallery: {
		{
			"title": "Robotics Lab", "imageUrl": "https://images.example.edu/robotics.jpg",
			"category": "Labs", "isFeatured": true,
		},
	},
	schema.Achievements: {
		{
			"title": "Best Paper Award", "description": "Awarded at the systems track.",
			"category": "Research", "achievedBy": "Dr. Meera Iyer",
			"achieverType": "Faculty", "date": "2024-11-02",
		},
	},
	schema.StudyMaterials: {
		{
			"title": "Data Structures Notes", "subject": "Data Structures",
			"year": "2nd Year", "semester": "Semester 3",
			"fileUrl": "https://files.example.edu/ds-notes.pdf",
		},
	},
	schema.News: {
		{
			"title": "Department ranks in top ten", "content": "Full story.",
			"excerpt": "A new national ranking.", "author": "Communications Office",
			"imageUrl": "https://images.example.edu/ranking.jpg", "category": "Achievement",
		},
	},
}

// seed fills each empty resource with demo content. Resources that already
// hold records, active or not, are left alone. only restricts the
// resources considered.
func seed(ctx context.Context, svc *record.Service, content map[string][]map[string]any, only []string, out io.Writer) (int, error) {
	total := 0
	for _, name := range svc.Registry().Names() {
		if len(only) > 0 && !slices.Contains(only, name) {
			continue
		}
		items, ok := content[name]
		if !ok {
			continue
		}

		existing, err := svc.List(ctx, name, map[string]string{schema.FieldIsActive: "all", "limit": "1"})
		if err != nil {
			return total, err
		}
		if len(existing) > 0 {
			fmt.Fprintf(out, "%s: already has records, skipping\n", name)
			continue
		}

		inserted := 0
		for _, item := range items {
			if _, err := svc.Create(ctx, name, clone(item)); err != nil {
				var de *apperror.DuplicateKeyError
				if errors.As(err, &de) {
					continue
				}
				return total, fmt.Errorf("seed %s: %w", name, err)
			}
			inserted++
		}
		total += inserted
		fmt.Fprintf(out, "%s: inserted %d\n", name, inserted)
	}
	return total, nil
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
