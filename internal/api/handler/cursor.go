package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/ndmanh/marketplace-be/internal/api/storage"
)

func DecodeDeliveryCursor(cursorStr string) (*storage.DeliveryCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, err
	}

	decodedParts := strings.Split(string(decoded), "|")
	if len(decodedParts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	var createdAt int64
	_, err = fmt.Sscanf(decodedParts[0], "%d", &createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt in cursor: %w", err)
	}

	return &storage.DeliveryCursor{
		CreatedAt:  time.Unix(0, createdAt),
		DeliveryID: decodedParts[1],
	}, nil
}

func EncodeDeliveryCursor(cursor *storage.DeliveryCursor) string {
	cs := fmt.Sprintf("%d|%s", cursor.CreatedAt.UnixNano(), cursor.DeliveryID)
	return base64.StdEncoding.EncodeToString([]byte(cs))
}
