package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"parley/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func printPosts(posts []models.Post) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTOPIC\tAUTHOR\tPOSTED")
	for _, p := range posts {
		topic := p.Topic
		if topic == "" {
			topic = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, topic, p.Username, p.CreatedAt.Local().Format(timeLayout))
	}
	w.Flush()
}

func printPost(p models.Post) {
	fmt.Printf("#%d %s\n", p.ID, p.Title)
	if p.Topic != "" {
		fmt.Printf("Topic: %s\n", p.Topic)
	}
	fmt.Printf("By %s on %s\n\n", p.Username, p.CreatedAt.Local().Format(timeLayout))
	fmt.Println(p.Content)
}

func printComments(comments []models.Comment, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range comments {
		fmt.Printf("%s[#%d] %s (%s)\n", indent, c.ID, c.Username,
			c.CreatedAt.Local().Format(timeLayout))
		for _, line := range strings.Split(c.Content, "\n") {
			fmt.Printf("%s  %s\n", indent, line)
		}
	}
}
