package cachesync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/frigosur/backoffice/internal/kafka"
	"github.com/frigosur/backoffice/internal/pedidos"
	"github.com/frigosur/backoffice/internal/redisx"
)

// Service mantiene la cache de Redis al día con los eventos del dominio.
// Otras instancias de la API pueden haber cacheado un pedido o el snapshot
// de stock; acá se invalida para todas.
type Service struct {
	Redis *redis.Client
}

// HandleEvento se engancha como handler del consumer, un consumer por topic.
func (s *Service) HandleEvento(ctx context.Context, m kafkago.Message) error {
	var env pedidos.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup por event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, "cachesync", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case pedidos.EventPedidoCreado:
		p, err := kafkax.UnwrapPayload[pedidos.PedidoCreadoPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.invalidarPedido(ctx, p.PedidoID)

	case pedidos.EventPedidoAnulado:
		p, err := kafkax.UnwrapPayload[pedidos.PedidoAnuladoPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.invalidarPedido(ctx, p.PedidoID)

	case pedidos.EventFacturaIngresada:
		return s.Redis.Del(ctx, redisx.KeyStockSnapshot).Err()

	default:
		log.Printf("evento ignorado: %s", env.EventType)
		return nil
	}
}

func (s *Service) invalidarPedido(ctx context.Context, pedidoID int64) error {
	return s.Redis.Del(ctx,
		fmt.Sprintf(redisx.KeyPedido, pedidoID),
		redisx.KeyStockSnapshot,
	).Err()
}
