package service

func pageBounds(page, size int) (from, limit, normPage int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return (page - 1) * size, size, page
}
