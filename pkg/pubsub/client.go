package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chirpy-dev/chirpy-backend/pkg/config"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopic           = errors.New("pubsub notification topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

type topicAdmin interface {
	GetTopic(ctx context.Context, name string) error
	CreateTopic(ctx context.Context, name string) error
}

// Client owns the Pub/Sub connection and the notification topic publisher.
type Client struct {
	client    *pubsub.Client
	admin     topicAdmin
	projectID string
	cfg       config.PubSubConfig
	logg      *logger.Logger

	mu         sync.Mutex
	publishers []*pubsub.Publisher
}

// NewClient connects to Pub/Sub and makes sure the notification topic exists,
// creating it when cfg.CreateTopic is set.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:    psClient,
		admin:     &gcpTopicAdmin{client: psClient},
		projectID: gcp.ProjectID,
		cfg:       cfg,
		logg:      logg,
	}
	if err := c.ensureTopic(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"topic":              cfg.NotificationTopic,
			"order_by_recipient": cfg.OrderByRecipient,
		}), "pubsub client initialized")
	}
	return c, nil
}

func (c *Client) ensureTopic(ctx context.Context) error {
	fullName := topicResourceName(c.projectID, c.cfg.NotificationTopic)
	if fullName == "" {
		return errNoTopic
	}

	err := c.admin.GetTopic(ctx, fullName)
	switch {
	case err == nil:
		return nil
	case status.Code(err) != codes.NotFound:
		return fmt.Errorf("checking topic %q: %w", fullName, err)
	case !c.cfg.CreateTopic:
		return fmt.Errorf("topic %q does not exist", fullName)
	}

	if err := c.admin.CreateTopic(ctx, fullName); err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("creating topic %q: %w", fullName, err)
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "topic", fullName), "pubsub topic created")
	}
	return nil
}

// NotificationPublisher returns a publisher for the notification topic. Close
// flushes and stops every publisher handed out.
func (c *Client) NotificationPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	fullName := topicResourceName(c.projectID, c.cfg.NotificationTopic)
	if fullName == "" {
		return nil
	}
	pub := c.client.Publisher(fullName)
	pub.EnableMessageOrdering = c.cfg.OrderByRecipient

	c.mu.Lock()
	c.publishers = append(c.publishers, pub)
	c.mu.Unlock()
	return pub
}

// Ping checks that the notification topic is still reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	fullName := topicResourceName(c.projectID, c.cfg.NotificationTopic)
	if fullName == "" {
		return errNoTopic
	}
	return c.admin.GetTopic(ctx, fullName)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	for _, pub := range c.publishers {
		pub.Stop()
	}
	c.publishers = nil
	c.mu.Unlock()
	return c.client.Close()
}

type gcpTopicAdmin struct {
	client *pubsub.Client
}

func (a *gcpTopicAdmin) GetTopic(ctx context.Context, name string) error {
	_, err := a.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
	return err
}

func (a *gcpTopicAdmin) CreateTopic(ctx context.Context, name string) error {
	_, err := a.client.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: name})
	return err
}

// topicResourceName expands a short topic id to projects/<p>/topics/<id>.
// Full resource names pass through.
func topicResourceName(projectID, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n)
}
