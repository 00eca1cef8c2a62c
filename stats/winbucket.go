package stats

// 派彩倍數的分布區間
//
// 請勿修改預設值
//   - 區間: 贏倍區間 [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
var (
	bucketEdges = []float64{0, 1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000}
	bucketStr   = []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"}
)

// BucketLabels 回傳區間標籤複本，索引對應 BucketIndex 的回傳值
func BucketLabels() []string {
	return append([]string(nil), bucketStr...)
}

// BucketCount 回傳區間數
func BucketCount() int {
	return len(bucketStr)
}

// BucketIndex 回傳派彩倍數所屬的區間索引。
// 派彩是浮點倍數，零派彩自成一區，其餘依邊界表線性定位
func BucketIndex(mult float64) int {
	if mult <= 0 {
		return 0
	}
	for i := 1; i < len(bucketEdges); i++ {
		if mult < bucketEdges[i] {
			return i
		}
	}
	return len(bucketEdges)
}
