package lifecycle_test

import "github.com/dalemusser/docthrough/internal/app/system/paging"

func pageOf(n int64) paging.Params { return paging.Params{Limit: n} }
