package spatial

const (
	// bounded forward search: vehicle may travel 20% faster than the max avl speed
	SEARCH_DISTANCE_SPEED_FACTOR = 1.2
	SEARCH_DISTANCE_MARGIN       = 200.0 // meter

	DEFAULT_MAX_HEADING_OFFSET_FROM_SEGMENT                       = 90.0  // degree
	DEFAULT_MAX_DISTANCE_FROM_SEGMENT                             = 60.0  // meter
	DEFAULT_MAX_AVL_SPEED                                         = 31.3  // meter/second
	DEFAULT_DISTANCE_BETWEEN_AVLS_FOR_INITIAL_MATCHING_NO_HEADING = 100.0 // meter
	DEFAULT_DISTANCE_FROM_END_OF_BLOCK_FOR_INITIAL_MATCHING       = 250.0 // meter
	DEFAULT_DISTANCE_FROM_LAST_STOP_FOR_END_MATCHING              = 250.0 // meter
)
