// Package sync implementa el motor de sincronización offline-first de escaneos:
// validación de intents, conciliación atómica contra el libro de existencias y
// procesamiento de lotes con semántica de fallo parcial.
//
// Contrato con el outbox del dispositivo (no implementado aquí): el cliente
// encola cada escaneo con un ClientScanID único por dispositivo+posición, puede
// retransmitir el lote cuantas veces necesite (cortes de red, timeouts) y marca
// cada ítem según el SyncResult devuelto. Un resultado applied es definitivo:
// reenviar el mismo ClientScanID devuelve el resultado guardado sin efecto
// adicional. rejected y conflict no se reintentan automáticamente; el operador
// corrige y el cliente re-encola con un ClientScanID nuevo si corresponde.
package sync
