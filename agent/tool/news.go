package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

type NewsResult struct {
	Status   string    `json:"status"`
	Topic    string    `json:"topic,omitempty"`
	Articles []Article `json:"articles,omitempty"`
	Message  string    `json:"message,omitempty"`
}

var newsTopics = []string{"technology", "finance", "health"}

var mockNews = map[string][]Article{
	"technology": {
		{Title: "New AI Breakthrough in Robotics", Content: "Researchers at TechLab announce a significant advancement in AI-driven robotic navigation, promising more autonomous systems.", Source: "Tech Daily"},
		{Title: "Quantum Computing Market Update", Content: "The market for quantum computing solutions is expected to grow by 25% this year, driven by investments in national research programs.", Source: "Quantum Insights"},
		{Title: "Cybersecurity Threats on the Rise", Content: "A recent report indicates a sharp increase in sophisticated phishing attacks targeting remote workers.", Source: "Security Weekly"},
	},
	"finance": {
		{Title: "Global Stock Markets Show Resilience", Content: "Despite inflationary pressures, major global stock indices have shown unexpected resilience in the last quarter.", Source: "Financial Times"},
		{Title: "Interest Rate Hikes Expected Soon", Content: "Central banks are signaling further interest rate increases to combat persistent inflation, impacting borrowing costs.", Source: "Bloomberg"},
		{Title: "Cryptocurrency Volatility Continues", Content: "Bitcoin and Ethereum experience further price swings as regulatory uncertainty impacts investor confidence.", Source: "CoinDesk"},
	},
	"health": {
		{Title: "New Cancer Drug Shows Promising Results", Content: "Clinical trials for a novel cancer therapy have yielded positive early results, offering new hope for patients.", Source: "Health Journal"},
		{Title: "Mental Health Awareness Campaign Launches", Content: "A nationwide campaign aims to destigmatize mental health issues and provide resources for support.", Source: "Public Health News"},
		{Title: "Vaccine Development Progress Update", Content: "Scientists are making steady progress on new vaccines for emerging infectious diseases.", Source: "Medical Gazette"},
	},
}

// SearchNews matches topic against topic keys and article titles, case-insensitively.
func SearchNews(topic string) NewsResult {
	needle := strings.ToLower(strings.TrimSpace(topic))

	var found []Article
	if needle != "" {
		for _, key := range newsTopics {
			articles := mockNews[key]
			if strings.Contains(key, needle) || anyTitleContains(articles, needle) {
				found = append(found, articles...)
			}
		}
	}

	if len(found) == 0 {
		return NewsResult{
			Status:  "error",
			Message: fmt.Sprintf("No specific news found for '%s'. Showing general news.", topic),
		}
	}
	return NewsResult{Status: "success", Topic: topic, Articles: found}
}

func anyTitleContains(articles []Article, needle string) bool {
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), needle) {
			return true
		}
	}
	return false
}

func runNewsAPI(_ context.Context, args map[string]any) (any, error) {
	topic := stringArg(args, "topic")
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	return SearchNews(topic), nil
}

func newsInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolNewsAPI,
		Desc: "Fetches news articles for a topic. Returns a JSON object with the matching articles.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"topic": {Type: schema.String, Desc: "News topic, e.g. technology", Required: true},
		}),
	}
}
