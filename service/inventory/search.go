package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/mitchellh/mapstructure"

	inventoryEntity "kasuwa.GO/model/entity/inventory"
)

var (
	searchServiceInstance *MovementSearchService
	searchServiceOnce     sync.Once
)

// GetSearchService returns singleton MovementSearchService.
func GetSearchService() *MovementSearchService {
	searchServiceOnce.Do(func() {
		searchServiceInstance = NewMovementSearchService()
	})
	return searchServiceInstance
}

// MovementSearchService mirrors the ledger into Elasticsearch for audit
// queries. The database stays the source of truth; indexing is best-effort
// and a missing cluster only disables search, never mutations.
type MovementSearchService struct {
	client *elasticsearch.Client
	prefix string
}

func NewMovementSearchService() *MovementSearchService {
	host := os.Getenv("ELASTICSEARCH_HOST")
	if host == "" {
		host = "http://localhost:9200"
	}
	prefix := os.Getenv("ELASTICSEARCH_INDEX_PREFIX")
	if prefix == "" {
		prefix = "kasuwa"
	}

	cfg := elasticsearch.Config{
		Addresses: []string{host},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return &MovementSearchService{prefix: prefix}
	}

	return &MovementSearchService{
		client: client,
		prefix: prefix,
	}
}

func (s *MovementSearchService) indexName() string {
	return s.prefix + "_stock_movement"
}

// MovementDoc is the indexed shape of a ledger entry.
type MovementDoc struct {
	MovementID       uint   `json:"movement_id" mapstructure:"movement_id"`
	ProductID        string `json:"product_id" mapstructure:"product_id"`
	MovementType     string `json:"movement_type" mapstructure:"movement_type"`
	Quantity         int    `json:"quantity" mapstructure:"quantity"`
	PreviousQuantity int    `json:"previous_quantity" mapstructure:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity" mapstructure:"new_quantity"`
	Reason           string `json:"reason" mapstructure:"reason"`
	ReferenceType    string `json:"reference_type" mapstructure:"reference_type"`
	ReferenceID      string `json:"reference_id" mapstructure:"reference_id"`
	CreatedBy        string `json:"created_by" mapstructure:"created_by"`
	CreatedAt        string `json:"created_at" mapstructure:"created_at"`
}

// IndexMovement pushes a committed ledger entry into the audit index.
// Failures are logged and swallowed.
func (s *MovementSearchService) IndexMovement(ctx context.Context, m *inventoryEntity.StockMovement) {
	if s.client == nil || m == nil {
		return
	}

	doc := MovementDoc{
		MovementID:       m.MovementID,
		ProductID:        m.ProductID,
		MovementType:     m.Type,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		log.Printf("[MovementSearch] marshal movement %d: %v", m.MovementID, err)
		return
	}

	req := esapi.IndexRequest{
		Index:      s.indexName(),
		DocumentID: fmt.Sprintf("%d", m.MovementID),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		log.Printf("[MovementSearch] index movement %d: %v", m.MovementID, err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Printf("[MovementSearch] index movement %d: %s", m.MovementID, res.String())
	}
}

// MovementQuery filters an audit search. Zero-value fields are ignored.
type MovementQuery struct {
	ProductID     string
	MovementType  string
	Reason        string
	ReferenceType string
	ReferenceID   string
	Text          string
	From          *time.Time
	To            *time.Time
	Size          int
	Page          int
}

// Search runs an audit query against the movement index.
func (s *MovementSearchService) Search(ctx context.Context, q MovementQuery) ([]MovementDoc, int, error) {
	if s.client == nil {
		return nil, 0, fmt.Errorf("elasticsearch not configured")
	}

	size := q.Size
	if size <= 0 {
		size = 20
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	from := (page - 1) * size

	must := []map[string]interface{}{}
	filter := []map[string]interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"reason^2", "reference_id", "created_by"},
			},
		})
	}
	for field, value := range map[string]string{
		"product_id":     q.ProductID,
		"movement_type":  strings.ToUpper(q.MovementType),
		"reason":         q.Reason,
		"reference_type": q.ReferenceType,
		"reference_id":   q.ReferenceID,
	} {
		if value != "" {
			filter = append(filter, map[string]interface{}{
				"term": map[string]interface{}{field + ".keyword": value},
			})
		}
	}
	if q.From != nil || q.To != nil {
		rng := map[string]interface{}{}
		if q.From != nil {
			rng["gte"] = q.From.UTC().Format(time.RFC3339)
		}
		if q.To != nil {
			rng["lt"] = q.To.UTC().Format(time.RFC3339)
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"created_at": rng},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if len(boolQuery) == 0 {
		boolQuery["must"] = []map[string]interface{}{
			{"match_all": map[string]interface{}{}},
		}
	}

	body := map[string]interface{}{
		"from": from,
		"size": size,
		"sort": []map[string]interface{}{
			{"created_at": map[string]interface{}{"order": "desc"}},
		},
		"query": map[string]interface{}{"bool": boolQuery},
	}

	bodyBytes, _ := json.Marshal(body)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName()),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, 0, err
	}

	docs := make([]MovementDoc, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		var doc MovementDoc
		if err := mapstructure.WeakDecode(hit.Source, &doc); err != nil {
			log.Printf("[MovementSearch] decode hit: %v", err)
			continue
		}
		docs = append(docs, doc)
	}

	return docs, esResp.Hits.Total.Value, nil
}
